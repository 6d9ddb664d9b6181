package session

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Printer writes a line per event, for --verbose runs.
type Printer struct {
	out            io.Writer
	showReasoning  bool
	mu             sync.Mutex
	commands       int
	failedCommands int
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer, showReasoning bool) *Printer {
	return &Printer{out: out, showReasoning: showReasoning}
}

// Observe implements Observer.
func (p *Printer) Observe(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	width := p.terminalWidth()
	switch ev.Type {
	case EventCommandStarted:
		p.commands++
		line := fmt.Sprintf("%s %s", toolIcon(ev.Tool), ev.Tool)
		if ev.Summary != "" {
			line += ": " + ev.Summary
		}
		fmt.Fprintln(p.out, fit(line, width))

	case EventCommandFinished:
		if ev.ExitCode != 0 {
			p.failedCommands++
			fmt.Fprintln(p.out, fit(fmt.Sprintf("  ⚠ %s exited %d", ev.Tool, ev.ExitCode), width))
		}

	case EventReasoning:
		if p.showReasoning && strings.TrimSpace(ev.Text) != "" {
			fmt.Fprintln(p.out, fit("💭 "+truncateString(ev.Text, 200), width))
		}

	case EventRuntimeError:
		fmt.Fprintf(p.out, "⚠ Error: %s\n", ev.Text)

	case EventFinalAnswer:
		fmt.Fprintln(p.out, "✓ Review complete")
	}
}

// Stats returns the number of commands seen and how many failed.
func (p *Printer) Stats() (commands, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commands, p.failedCommands
}

func (p *Printer) terminalWidth() int {
	if f, ok := p.out.(interface{ Fd() uintptr }); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			return w
		}
	}
	return 0
}

// toolIcon returns an icon for a tool name.
func toolIcon(name string) string {
	switch strings.ToLower(name) {
	case "read":
		return "📖"
	case "bash":
		return "💻"
	case "glob":
		return "🔍"
	case "grep":
		return "🔎"
	case "task":
		return "🤖"
	case "todowrite":
		return "📋"
	case "webfetch":
		return "🌐"
	default:
		return "🔧"
	}
}

// fit truncates s to width runes; width 0 means unlimited.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// truncateString flattens newlines and truncates to maxLen runes.
func truncateString(s string, maxLen int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return fit(s, maxLen)
}
