package config

import (
	"os"
	"strconv"
	"strings"
)

// Env is a read-only view of process environment variables.
type Env interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads from the real process environment.
type OSEnv struct{}

// Lookup implements Env.
func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed environment, used by tests and callers that need a
// synthetic view of CI variables.
type MapEnv map[string]string

// Lookup implements Env.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Get returns the value of key, or "" when unset.
func Get(env Env, key string) string {
	if env == nil {
		return ""
	}
	v, _ := env.Lookup(key)
	return v
}

// FirstSet returns the first non-empty variable among keys and its name.
func FirstSet(env Env, keys ...string) (value, key string) {
	for _, k := range keys {
		if v := strings.TrimSpace(Get(env, k)); v != "" {
			return v, k
		}
	}
	return "", ""
}

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	field  string
	apply  func(*Config, string)
}{
	{
		envVar: "HODOR_MODEL",
		field:  "model",
		apply: func(c *Config, v string) {
			c.Model = v
		},
	},
	{
		envVar: "HODOR_CLAUDE_CMD",
		field:  "claude.command",
		apply: func(c *Config, v string) {
			c.Claude.Command = v
		},
	},
	{
		envVar: "HODOR_MAX_TURNS",
		field:  "claude.max_turns",
		apply: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Claude.MaxTurns = n
			}
		},
	},
	{
		envVar: "HODOR_WORKSPACE",
		field:  "workspace",
		apply: func(c *Config, v string) {
			c.Workspace = v
		},
	},
	{
		envVar: "HODOR_POST",
		field:  "review.post",
		apply: func(c *Config, v string) {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Review.Post = b
			}
		},
	},
}

// ApplyEnv modifies cfg in place with environment variable values and
// records the source of every field it touched.
func ApplyEnv(cfg *Config, env Env) {
	for _, override := range envOverrides {
		if val := Get(env, override.envVar); val != "" {
			override.apply(cfg, val)
			cfg.setSource(override.field, "env:"+override.envVar)
		}
	}
}
