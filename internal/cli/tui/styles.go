package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title  lipgloss.Style
	Timer  lipgloss.Style
	Target lipgloss.Style

	// Command styling
	CommandRunning lipgloss.Style
	CommandOK      lipgloss.Style
	CommandFailed  lipgloss.Style
	ToolName       lipgloss.Style
	Summary        lipgloss.Style

	// Reasoning text
	Reasoning lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Status line
	StatusTokens lipgloss.Style
	StatusFailed lipgloss.Style
	StatusDone   lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Target: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		CommandRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		CommandOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		CommandFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		ToolName:       lipgloss.NewStyle().Bold(true),
		Summary:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		Reasoning: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		StatusTokens: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		StatusDone:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconRunning   = "●"
	IconOK        = "✓"
	IconFailed    = "✗"
	IconReasoning = "💭"
	IconReview    = "🔍"
)
