package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   MapEnv
		check func(t *testing.T, c *Config)
	}{
		{
			name: "claude command",
			env:  MapEnv{"HODOR_CLAUDE_CMD": "/custom/claude"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "/custom/claude", c.Claude.Command)
				assert.Equal(t, "env:HODOR_CLAUDE_CMD", c.Source("claude.command"))
			},
		},
		{
			name: "post flag",
			env:  MapEnv{"HODOR_POST": "true"},
			check: func(t *testing.T, c *Config) {
				assert.True(t, c.Review.Post)
			},
		},
		{
			name: "bad integer ignored",
			env:  MapEnv{"HODOR_MAX_TURNS": "lots"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultMaxTurns, c.Claude.MaxTurns)
				assert.Equal(t, "env:HODOR_MAX_TURNS", c.Source("claude.max_turns"))
			},
		},
		{
			name: "empty values leave defaults",
			env:  MapEnv{"HODOR_MODEL": "", "HODOR_WORKSPACE": ""},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultModel, c.Model)
				assert.Empty(t, c.Workspace)
				assert.Equal(t, "default", c.Source("model"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			ApplyEnv(cfg, tt.env)
			tt.check(t, cfg)
		})
	}
}

func TestFirstSet(t *testing.T) {
	env := MapEnv{"B": "  ", "C": "value"}

	v, k := FirstSet(env, "A", "B", "C")
	assert.Equal(t, "value", v)
	assert.Equal(t, "C", k)

	v, k = FirstSet(env, "A")
	assert.Empty(t, v)
	assert.Empty(t, k)
}

func TestGet_NilEnv(t *testing.T) {
	assert.Empty(t, Get(nil, "HOME"))
}
