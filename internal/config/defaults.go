package config

const (
	DefaultModel         = "anthropic/claude-sonnet-4-5-20250929"
	DefaultClaudeCommand = "claude"
	DefaultMaxTurns      = 500
	DefaultTargetBranch  = "main"
	DefaultConfigFile    = ".hodor.yaml"
)

// DefaultAllowedTools is the tool allow-list handed to the agent runtime.
// The agent only reads the repository; it never edits files.
var DefaultAllowedTools = []string{
	"Read",
	"Glob",
	"Grep",
	"Bash(git:*)",
	"Bash(gh:*)",
	"Bash(glab:*)",
	"Bash(ls:*)",
	"Bash(cat:*)",
	"Bash(wc:*)",
	"Bash(head:*)",
	"Bash(tail:*)",
}

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	tools := make([]string, len(DefaultAllowedTools))
	copy(tools, DefaultAllowedTools)
	return &Config{
		Model: DefaultModel,
		Claude: ClaudeConfig{
			Command:      DefaultClaudeCommand,
			MaxTurns:     DefaultMaxTurns,
			AllowedTools: tools,
		},
		Review: ReviewConfig{
			Post:   false,
			Footer: true,
		},
		sources: make(map[string]string),
	}
}
