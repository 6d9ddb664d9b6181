package tui

import (
	"bytes"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg carries one diagnostic log line into the TUI.
type LogMsg struct {
	Line string
}

// LogWriter is an io.Writer for the standard logger while the TUI owns the
// terminal. Complete lines become LogMsgs; lines are dropped rather than
// blocking the logger when the program falls behind.
type LogWriter struct {
	program sender
	mu      sync.Mutex
	buffer  bytes.Buffer
	maxLine int
	lines   chan string
	closed  bool
	done    chan struct{}
}

// NewLogWriter creates a LogWriter that sends log lines into the program.
func NewLogWriter(program *tea.Program) *LogWriter {
	return newLogWriter(program)
}

func newLogWriter(program sender) *LogWriter {
	w := &LogWriter{
		program: program,
		maxLine: 500,
		lines:   make(chan string, 64),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for line := range w.lines {
			w.program.Send(LogMsg{Line: line})
		}
	}()
	return w
}

// Write implements io.Writer.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return len(p), nil
	}
	_, _ = w.buffer.Write(p)

	for {
		data := w.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		line := string(data[:idx])
		w.buffer.Next(idx + 1)
		w.sendLine(line)
	}

	return len(p), nil
}

// Close sends any buffered partial line and waits for pending lines to be
// delivered. Later writes are discarded.
func (w *LogWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	if w.buffer.Len() > 0 {
		w.sendLine(w.buffer.String())
		w.buffer.Reset()
	}
	w.closed = true
	close(w.lines)
	w.mu.Unlock()

	<-w.done
	return nil
}

func (w *LogWriter) sendLine(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	if w.maxLine > 0 && len(line) > w.maxLine {
		line = line[:w.maxLine] + "..."
	}
	select {
	case w.lines <- line:
	default:
	}
}
