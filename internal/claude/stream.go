package claude

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/RevCBH/hodor/internal/session"
)

// Decoder turns stream-json lines into session events.
type Decoder struct {
	emit func(session.Event)

	// tools maps tool_use ids to the started command.
	tools map[string]session.Event

	// usage holds the last usage seen per assistant message id; the CLI
	// repeats a message's usage on every content block line.
	usage map[string]session.Usage
}

// NewDecoder returns a decoder that reports through emit.
func NewDecoder(emit func(session.Event)) *Decoder {
	return &Decoder{
		emit:  emit,
		tools: make(map[string]session.Event),
		usage: make(map[string]session.Usage),
	}
}

// Decode reads until EOF. Lines that are not JSON are ignored. Lines have
// no length limit; tool results can carry whole diffs.
func (d *Decoder) Decode(r io.Reader) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var sl streamLine
			if jsonErr := json.Unmarshal(line, &sl); jsonErr == nil {
				d.handle(&sl)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *Decoder) handle(sl *streamLine) {
	switch sl.Type {
	case "assistant":
		if sl.Message == nil {
			return
		}
		d.handleUsage(sl.Message)
		for _, block := range sl.Message.Content {
			switch block.Type {
			case "text":
				if block.Text != "" {
					d.emit(session.Event{Type: session.EventReasoning, Text: block.Text})
				}
			case "thinking":
				if block.Thinking != "" {
					d.emit(session.Event{Type: session.EventReasoning, Text: block.Thinking})
				}
			case "tool_use":
				ev := session.Event{
					Type:    session.EventCommandStarted,
					Tool:    block.Name,
					ToolID:  block.ID,
					Summary: summarizeToolInput(block.Name, block.Input),
				}
				d.tools[block.ID] = ev
				d.emit(ev)
			}
		}

	case "user":
		if sl.Message == nil {
			return
		}
		for _, block := range sl.Message.Content {
			if block.Type == "tool_result" {
				d.handleToolResult(block)
			}
		}

	case "result":
		if sl.IsError || strings.HasPrefix(sl.Subtype, "error") {
			msg := sl.Subtype
			if sl.Result != "" {
				msg = fmt.Sprintf("%s: %s", sl.Subtype, sl.Result)
			}
			d.emit(session.Event{Type: session.EventRuntimeError, Text: msg})
			return
		}
		if strings.TrimSpace(sl.Result) != "" {
			d.emit(session.Event{Type: session.EventFinalAnswer, Text: sl.Result})
		}
	}
}

func (d *Decoder) handleUsage(msg *message) {
	if msg.Usage == nil {
		return
	}
	cur := session.Usage{
		InputTokens:    msg.Usage.InputTokens + msg.Usage.CacheCreationInputTokens + msg.Usage.CacheReadInputTokens,
		OutputTokens:   msg.Usage.OutputTokens,
		CacheHitTokens: msg.Usage.CacheReadInputTokens,
	}
	prev := d.usage[msg.ID]
	delta := session.Usage{
		InputTokens:    max(cur.InputTokens-prev.InputTokens, 0),
		OutputTokens:   max(cur.OutputTokens-prev.OutputTokens, 0),
		CacheHitTokens: max(cur.CacheHitTokens-prev.CacheHitTokens, 0),
	}
	if msg.ID != "" {
		d.usage[msg.ID] = session.Usage{
			InputTokens:    max(cur.InputTokens, prev.InputTokens),
			OutputTokens:   max(cur.OutputTokens, prev.OutputTokens),
			CacheHitTokens: max(cur.CacheHitTokens, prev.CacheHitTokens),
		}
	}
	if !delta.IsZero() {
		d.emit(session.Event{Type: session.EventMetricsDelta, Usage: delta})
	}
}

var exitCodePattern = regexp.MustCompile(`Exit code (\d+)`)

func (d *Decoder) handleToolResult(block contentBlock) {
	ev := session.Event{Type: session.EventCommandFinished, ToolID: block.ToolUseID}
	if started, ok := d.tools[block.ToolUseID]; ok {
		ev.Tool = started.Tool
		ev.Summary = started.Summary
		delete(d.tools, block.ToolUseID)
	}

	text := toolResultText(block.Content)
	if m := exitCodePattern.FindStringSubmatch(text); m != nil {
		ev.ExitCode, _ = strconv.Atoi(m[1])
	} else if block.IsError {
		ev.ExitCode = 1
	}
	d.emit(ev)
}

// toolResultText flattens a tool_result content field, which is either a
// string or a list of text blocks.
func toolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// summarizeToolInput extracts key information from tool input for display.
func summarizeToolInput(toolName string, input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal(input, &data); err != nil {
		return ""
	}

	switch strings.ToLower(toolName) {
	case "read":
		if path, ok := data["file_path"].(string); ok {
			return truncatePath(path)
		}
	case "bash":
		if cmd, ok := data["command"].(string); ok {
			return truncateString(cmd, 80)
		}
	case "glob":
		if pattern, ok := data["pattern"].(string); ok {
			return pattern
		}
	case "grep":
		if pattern, ok := data["pattern"].(string); ok {
			return truncateString(pattern, 40)
		}
	case "task":
		if desc, ok := data["description"].(string); ok {
			return truncateString(desc, 50)
		}
	}

	return ""
}

// truncatePath shortens a file path for display.
func truncatePath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 3 {
		return path
	}
	return ".../" + strings.Join(parts[len(parts)-3:], "/")
}

// truncateString truncates a string to maxLen with ellipsis.
func truncateString(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
