package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/RevCBH/hodor/internal/session"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// formatElapsed renders d as "Xm Ys".
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// formatCount adds thousands separators.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// summaryLine renders token usage, cost and elapsed time for a session.
func summaryLine(m session.Metrics) string {
	tokens := fmt.Sprintf("Tokens: %s in", formatCount(m.InputTokens))
	if m.CacheHitTokens > 0 {
		tokens += fmt.Sprintf(" (%s cached)", formatCount(m.CacheHitTokens))
	}
	tokens += fmt.Sprintf(", %s out, %s total", formatCount(m.OutputTokens), formatCount(m.TotalTokens))

	cost := "Cost: n/a"
	if m.EstimatedCost > 0 {
		cost = fmt.Sprintf("Cost: $%.4f", m.EstimatedCost)
	}
	return fmt.Sprintf("%s | %s | Time: %s", tokens, cost, formatElapsed(m.Elapsed()))
}

// reviewFooter is appended to posted reviews.
func reviewFooter(model string) string {
	return fmt.Sprintf("\n\n---\n*Review generated by Hodor using `%s`*", model)
}
