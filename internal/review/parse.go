package review

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n(\\{.*?\\})\\s*```")

// Parse recovers a Review from the agent's final answer. It never fails:
// answers without a JSON review come back as FormatText with the text as
// the overall explanation.
func Parse(text string) (*Review, Format) {
	trimmed := strings.TrimSpace(text)

	if r, ok := decode(trimmed); ok {
		return r, FormatJSON
	}

	for _, candidate := range embeddedCandidates(trimmed) {
		if r, ok := decode(candidate); ok {
			return r, FormatEmbedded
		}
	}

	return &Review{OverallExplanation: text}, FormatText
}

func decode(s string) (*Review, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var r Review
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, false
	}
	return &r, true
}

// embeddedCandidates lists JSON object candidates in preference order:
// fenced blocks, balanced objects in order of appearance, then the span
// from the first "{" to the last "}".
func embeddedCandidates(text string) []string {
	var out []string
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	out = append(out, balancedObjects(text, maxBalancedCandidates)...)
	if span := extractJSON(text); span != "" {
		out = append(out, span)
	}
	return out
}

// extractJSON finds and extracts JSON object from surrounding text
func extractJSON(output string) string {
	firstBrace := strings.Index(output, "{")
	lastBrace := strings.LastIndex(output, "}")

	if firstBrace == -1 || lastBrace == -1 || firstBrace >= lastBrace {
		return ""
	}

	return output[firstBrace : lastBrace+1]
}

const maxBalancedCandidates = 16

// balancedObjects returns up to limit non-overlapping brace-balanced spans.
func balancedObjects(text string, limit int) []string {
	var out []string
	pos := 0
	for len(out) < limit {
		idx := strings.Index(text[pos:], "{")
		if idx == -1 {
			break
		}
		start := pos + idx
		end := balancedEnd(text, start)
		if end == -1 {
			pos = start + 1
			continue
		}
		out = append(out, text[start:end])
		pos = end
	}
	return out
}

// balancedEnd returns the index just past the object opening at start,
// skipping braces inside JSON strings, or -1 if it never closes.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
