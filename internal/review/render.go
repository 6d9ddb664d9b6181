package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Markdown renders r for posting. root, when set, is stripped from
// finding paths. A FormatText review renders as its original text.
func Markdown(r *Review, format Format, root string) string {
	if format == FormatText {
		return r.OverallExplanation
	}

	var lines []string
	explanation := strings.TrimSpace(r.OverallExplanation)
	if explanation != "" {
		lines = append(lines, explanation, "")
	}

	if len(r.Findings) > 0 {
		groups := groupByPriority(r.Findings)
		lines = append(lines, "### Issues Found", "")

		sections := []struct {
			title    string
			findings []Finding
		}{
			{"**Critical (P0/P1)**", append(groups[0], groups[1]...)},
			{"**Important (P2)**", groups[2]},
			{"**Minor (P3)**", groups[3]},
			{"**Other Issues**", groups[-1]},
		}
		for _, s := range sections {
			if len(s.findings) == 0 {
				continue
			}
			lines = append(lines, s.title)
			for _, f := range s.findings {
				lines = append(lines, formatFinding(f, root))
			}
			lines = append(lines, "")
		}

		lines = append(lines, "### Summary", fmt.Sprintf(
			"Total issues: %d critical, %d important, %d minor.",
			len(groups[0])+len(groups[1]), len(groups[2]), len(groups[3]),
		), "")
	}

	if r.OverallCorrectness != "" {
		status := "Patch has blocking issues"
		if strings.EqualFold(strings.TrimSpace(r.OverallCorrectness), Correct) {
			status = "Patch is correct"
		}
		lines = append(lines, "### Overall Verdict", "**Status**: "+status)
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// groupByPriority buckets findings by priority 0-3; anything else goes
// under -1.
func groupByPriority(findings []Finding) map[int][]Finding {
	groups := make(map[int][]Finding)
	for _, f := range findings {
		p := -1
		if f.Priority != nil && *f.Priority >= 0 && *f.Priority <= 3 {
			p = *f.Priority
		}
		groups[p] = append(groups[p], f)
	}
	return groups
}

func formatFinding(f Finding, root string) string {
	title := f.Title
	if !strings.HasPrefix(title, "[P") && f.Priority != nil {
		title = fmt.Sprintf("[P%d] %s", *f.Priority, title)
	}

	line := "- **" + title + "**"
	if loc := formatLocation(f.CodeLocation, root); loc != "" {
		line += " (`" + loc + "`)"
	}

	out := []string{line}
	for _, bodyLine := range strings.Split(f.Body, "\n") {
		if strings.TrimSpace(bodyLine) != "" {
			out = append(out, "  "+bodyLine)
		}
	}
	return strings.Join(out, "\n")
}

// formatLocation renders path:start-end, or path:line for one line.
func formatLocation(loc CodeLocation, root string) string {
	path := loc.AbsoluteFilePath
	if path == "" {
		return ""
	}
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}

	r := loc.LineRange
	switch {
	case r.Start <= 0:
		return path
	case r.End <= r.Start:
		return fmt.Sprintf("%s:%d", path, r.Start)
	default:
		return fmt.Sprintf("%s:%d-%d", path, r.Start, r.End)
	}
}
