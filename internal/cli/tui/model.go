package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandState tracks one agent tool invocation in the TUI
type CommandState struct {
	ID       string
	Tool     string
	Summary  string
	Running  bool
	ExitCode int
}

// Model is the bubbletea model for the review progress view
type Model struct {
	// Configuration
	Target     string
	AgentModel string
	Styles     Styles

	// State
	Commands     []*CommandState
	CommandLimit int
	Started      int
	Failed       int
	Reasoning    string
	InputTokens  int
	OutputTokens int
	CacheTokens  int
	Answered     bool
	RuntimeError string
	StartTime    time.Time
	LogLines     []string
	LogLimit     int
	Width        int
	Height       int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a progress model for the change identified by target
// (e.g. "acme/widgets#42") reviewed with agentModel.
func NewModel(target, agentModel string) *Model {
	return &Model{
		Target:       target,
		AgentModel:   agentModel,
		Styles:       DefaultStyles(),
		CommandLimit: 8,
		StartTime:    time.Now(),
		LogLimit:     5,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// CommandStartedMsg indicates the agent invoked a tool
type CommandStartedMsg struct {
	ID      string
	Tool    string
	Summary string
}

// CommandFinishedMsg indicates a tool invocation returned
type CommandFinishedMsg struct {
	ID       string
	ExitCode int
}

// ReasoningMsg carries the agent's latest reasoning text
type ReasoningMsg struct {
	Text string
}

// UsageMsg carries a token usage delta
type UsageMsg struct {
	Input  int
	Output int
	Cache  int
}

// AnswerMsg indicates the agent delivered its final review
type AnswerMsg struct{}

// RuntimeErrorMsg indicates the agent reported an error
type RuntimeErrorMsg struct {
	Text string
}
