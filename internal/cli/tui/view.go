package tui

import (
	"fmt"
	"strings"
	"time"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderCommands())

	if m.Reasoning != "" {
		b.WriteString(m.renderReasoning())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if len(m.LogLines) > 0 {
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with timer and target
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))

	return fmt.Sprintf("%s %s  %s  %s",
		IconReview,
		m.Styles.Title.Render("Hodor Review"),
		m.Styles.Target.Render(m.Target),
		m.Styles.Timer.Render(timer),
	)
}

// renderCommands renders the most recent tool invocations
func (m *Model) renderCommands() string {
	if len(m.Commands) == 0 {
		return "  Waiting for the agent...\n\n"
	}

	var b strings.Builder
	for _, cmd := range m.Commands {
		b.WriteString(m.renderCommand(cmd))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderCommand renders one line: ✓ Bash git diff ...
func (m *Model) renderCommand(cmd *CommandState) string {
	var icon string
	switch {
	case cmd.Running:
		icon = m.Styles.CommandRunning.Render(IconRunning)
	case cmd.ExitCode != 0:
		icon = m.Styles.CommandFailed.Render(IconFailed)
	default:
		icon = m.Styles.CommandOK.Render(IconOK)
	}

	line := fmt.Sprintf("  %s %s", icon, m.Styles.ToolName.Render(cmd.Tool))
	if cmd.Summary != "" {
		line += " " + m.Styles.Summary.Render(m.clip(cmd.Summary, 12))
	}
	if !cmd.Running && cmd.ExitCode != 0 {
		line += m.Styles.CommandFailed.Render(fmt.Sprintf(" (exit %d)", cmd.ExitCode))
	}
	return line
}

func (m *Model) renderReasoning() string {
	text := strings.Join(strings.Fields(m.Reasoning), " ")
	return fmt.Sprintf("  %s %s", IconReasoning, m.Styles.Reasoning.Render(m.clip(text, 6)))
}

// renderStatusLine renders the command and token counters
func (m *Model) renderStatusLine() string {
	commands := fmt.Sprintf("%d commands", m.Started)
	failed := m.Styles.StatusFailed.Render(fmt.Sprintf("%d failed", m.Failed))
	tokens := m.Styles.StatusTokens.Render(fmt.Sprintf("%d in / %d out tokens", m.InputTokens, m.OutputTokens))

	line := fmt.Sprintf("  %s | %s | %s | %s", m.AgentModel, commands, failed, tokens)
	switch {
	case m.RuntimeError != "":
		line += "  " + m.Styles.StatusFailed.Render("⚠ "+m.RuntimeError)
	case m.Answered:
		line += "  " + m.Styles.StatusDone.Render(IconOK+" review ready")
	}
	return line
}

func (m *Model) renderLogs() string {
	var b strings.Builder
	b.WriteString(m.Styles.LogTitle.Render("  Log"))
	b.WriteString("\n")
	for _, line := range m.LogLines {
		b.WriteString("  ")
		b.WriteString(m.Styles.LogLine.Render(m.clip(line, 4)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the help text
func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to abort the review", key))
}

// clip shortens s to the terminal width minus indent. With an unknown
// width s is returned unchanged.
func (m *Model) clip(s string, indent int) string {
	limit := m.Width - indent
	if m.Width <= 0 || limit <= 3 || len([]rune(s)) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
