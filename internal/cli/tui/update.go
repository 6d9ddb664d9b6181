package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case CommandStartedMsg:
		m.Started++
		m.Commands = append(m.Commands, &CommandState{
			ID:      msg.ID,
			Tool:    msg.Tool,
			Summary: msg.Summary,
			Running: true,
		})
		if m.CommandLimit > 0 && len(m.Commands) > m.CommandLimit {
			m.Commands = m.Commands[len(m.Commands)-m.CommandLimit:]
		}

	case CommandFinishedMsg:
		if msg.ExitCode != 0 {
			m.Failed++
		}
		if cmd := m.findCommand(msg.ID); cmd != nil {
			cmd.Running = false
			cmd.ExitCode = msg.ExitCode
		}

	case ReasoningMsg:
		m.Reasoning = msg.Text

	case UsageMsg:
		m.InputTokens += msg.Input
		m.OutputTokens += msg.Output
		m.CacheTokens += msg.Cache

	case AnswerMsg:
		m.Answered = true

	case RuntimeErrorMsg:
		m.RuntimeError = msg.Text

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}

// findCommand returns the newest command with id, or nil once it has
// scrolled out of the list.
func (m *Model) findCommand(id string) *CommandState {
	for i := len(m.Commands) - 1; i >= 0; i-- {
		if m.Commands[i].ID == id {
			return m.Commands[i]
		}
	}
	return nil
}
