package tui

import (
	"github.com/RevCBH/hodor/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// sender is the part of *tea.Program the bridge uses
type sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards session events to the bubbletea program. It implements
// session.Observer.
type Bridge struct {
	program sender
}

// NewBridge creates a new bridge for the given program
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Observe implements session.Observer
func (b *Bridge) Observe(evt session.Event) {
	if msg := eventToMsg(evt); msg != nil {
		b.program.Send(msg)
	}
}

// eventToMsg converts a session.Event to a tea.Msg
func eventToMsg(evt session.Event) tea.Msg {
	switch evt.Type {
	case session.EventCommandStarted:
		return CommandStartedMsg{
			ID:      evt.ToolID,
			Tool:    evt.Tool,
			Summary: evt.Summary,
		}

	case session.EventCommandFinished:
		return CommandFinishedMsg{
			ID:       evt.ToolID,
			ExitCode: evt.ExitCode,
		}

	case session.EventReasoning:
		if evt.Text == "" {
			return nil
		}
		return ReasoningMsg{Text: evt.Text}

	case session.EventMetricsDelta:
		if evt.Usage.IsZero() {
			return nil
		}
		return UsageMsg{
			Input:  evt.Usage.InputTokens,
			Output: evt.Usage.OutputTokens,
			Cache:  evt.Usage.CacheHitTokens,
		}

	case session.EventFinalAnswer:
		return AnswerMsg{}

	case session.EventRuntimeError:
		return RuntimeErrorMsg{Text: evt.Text}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
