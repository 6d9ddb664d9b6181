package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for a single review run. It is built once at
// process start and passed down explicitly.
type Config struct {
	// Model is the LLM model id, optionally provider-prefixed
	// (e.g. "anthropic/claude-sonnet-4-5-20250929").
	Model string `yaml:"model"`

	// Workspace pins a directory for the checkout. Empty means a temp dir
	// that is removed on exit.
	Workspace string `yaml:"workspace,omitempty"`

	// ReasoningEffort is one of low, medium, high. Empty disables extended
	// thinking.
	ReasoningEffort string `yaml:"reasoning_effort,omitempty"`

	// Claude contains agent runtime settings.
	Claude ClaudeConfig `yaml:"claude"`

	// Review contains output and posting settings.
	Review ReviewConfig `yaml:"review"`

	// Prompt overrides the built-in review template.
	Prompt PromptConfig `yaml:"prompt,omitempty"`

	sources map[string]string
}

// ClaudeConfig controls claude CLI invocation.
type ClaudeConfig struct {
	// Command is the path or name of the claude binary.
	Command string `yaml:"command"`

	// MaxTurns limits the agent loop. -1 means unlimited.
	MaxTurns int `yaml:"max_turns"`

	// AllowedTools is passed through as --allowedTools.
	AllowedTools []string `yaml:"allowed_tools"`
}

// ReviewConfig controls what happens with the finished review.
type ReviewConfig struct {
	// Post publishes the review on the PR/MR.
	Post bool `yaml:"post"`

	// Footer appends the "generated by" line to posted reviews.
	Footer bool `yaml:"footer"`
}

// PromptConfig selects a custom instruction template.
type PromptConfig struct {
	// Inline takes precedence over File.
	Inline string `yaml:"inline,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// LoadFile reads a YAML config file on top of the defaults. A missing file
// is not an error when optional is true.
func LoadFile(path string, optional bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := decode(bytes.NewReader(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.markFileSources(path)
	return cfg, nil
}

// Load builds the effective config: defaults, then the YAML file, then
// environment overrides. Flags are applied by the caller afterwards.
func Load(path string, optional bool, env Env) (*Config, error) {
	cfg, err := LoadFile(path, optional)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Set records a flag-level override for field. Used by the CLI so that
// Source reports where each value came from.
func (c *Config) Set(field, source string) {
	c.setSource(field, source)
}

// Source returns where a field's value came from ("default" when untouched).
func (c *Config) Source(field string) string {
	if s, ok := c.sources[field]; ok {
		return s
	}
	return "default"
}

func (c *Config) setSource(field, source string) {
	if c.sources == nil {
		c.sources = make(map[string]string)
	}
	c.sources[field] = source
}

func (c *Config) markFileSources(path string) {
	def := DefaultConfig()
	src := "file:" + path
	if c.Model != def.Model {
		c.setSource("model", src)
	}
	if c.Claude.Command != def.Claude.Command {
		c.setSource("claude.command", src)
	}
	if c.Claude.MaxTurns != def.Claude.MaxTurns {
		c.setSource("claude.max_turns", src)
	}
	if c.Workspace != "" {
		c.setSource("workspace", src)
	}
	if c.Review.Post {
		c.setSource("review.post", src)
	}
}
