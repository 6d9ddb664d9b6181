// Package prompt renders the review instruction sent to the agent.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RevCBH/hodor/internal/diffcmd"
	"github.com/RevCBH/hodor/internal/skills"
)

//go:embed templates/review.md
var defaultTemplate string

// DefaultTemplate returns the built-in review template.
func DefaultTemplate() string {
	return defaultTemplate
}

// Source names where a template came from.
type Source string

const (
	SourceInline  Source = "inline"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// Options selects a custom template. Inline wins over File.
type Options struct {
	Inline string
	File   string
}

// Vars are the values substituted into the template.
type Vars struct {
	URL          string
	Owner        string
	Repo         string
	Number       int
	TargetBranch string
	Commands     diffcmd.Commands
}

// LoadTemplate returns the template chosen by opts.
func LoadTemplate(opts Options) (string, Source, error) {
	if strings.TrimSpace(opts.Inline) != "" {
		return opts.Inline, SourceInline, nil
	}
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", "", fmt.Errorf("reading prompt file: %w", err)
		}
		return string(data), SourceFile, nil
	}
	return defaultTemplate, SourceDefault, nil
}

// Render substitutes vars into tmpl. Unknown placeholders are left as is.
func Render(tmpl string, vars Vars) string {
	r := strings.NewReplacer(
		"{pr_url}", vars.URL,
		"{owner}", vars.Owner,
		"{repo}", vars.Repo,
		"{pr_number}", strconv.Itoa(vars.Number),
		"{target_branch}", vars.TargetBranch,
		"{pr_diff_cmd}", vars.Commands.PlatformDiff,
		"{git_diff_cmd}", vars.Commands.GitDiff(),
		"{list_files_cmd}", vars.Commands.ListFiles,
		"{diff_file_cmd}", vars.Commands.DiffFile,
		"{diff_explanation}", vars.Commands.Explanation,
	)
	return r.Replace(tmpl)
}

// Build loads the template for opts and renders it.
func Build(opts Options, vars Vars) (string, Source, error) {
	tmpl, src, err := LoadTemplate(opts)
	if err != nil {
		return "", "", err
	}
	return Render(tmpl, vars), src, nil
}

// AppendSkills adds each skill's body under a guidelines heading.
func AppendSkills(instruction string, selected []skills.Skill) string {
	if len(selected) == 0 {
		return instruction
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(instruction, "\n"))
	b.WriteString("\n\n## Repository Review Guidelines\n\n")
	b.WriteString("This repository defines the following review guidance. Apply it alongside the rules above.\n")
	for _, s := range selected {
		fmt.Fprintf(&b, "\n### %s\n\n", s.SourcePath)
		b.WriteString(strings.TrimSpace(s.Body))
		b.WriteString("\n")
	}
	return b.String()
}
