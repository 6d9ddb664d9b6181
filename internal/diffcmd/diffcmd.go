// Package diffcmd selects the diff commands handed to the review agent.
//
// Every git range is three-dot (<base>...HEAD), so the agent sees only what
// the change introduced and not what landed on the target branch since it
// diverged. Every command is pager-free.
package diffcmd

import (
	"fmt"
	"strings"

	"github.com/RevCBH/hodor/internal/platform"
)

// PathPlaceholder marks where DiffFile takes a file path.
const PathPlaceholder = "{path}"

// Options refine command selection.
type Options struct {
	// Number is the PR/MR number for the platform diff command.
	Number int

	// BaseSHA replaces origin/<target> as the left side of the range.
	BaseSHA string
}

// Commands is the command set for one review.
type Commands struct {
	ListFiles    string
	DiffFile     string
	PlatformDiff string
	Explanation  string

	// Base is the left side of every git range.
	Base string
}

// Select returns the commands for a change targeting targetBranch.
func Select(kind platform.Kind, targetBranch string, opts Options) Commands {
	base := "origin/" + targetBranch
	if opts.BaseSHA != "" {
		base = opts.BaseSHA
	}
	rng := base + "...HEAD"

	cmds := Commands{
		ListFiles:    "git --no-pager diff --name-only " + rng,
		DiffFile:     "git --no-pager diff " + rng + " -- " + PathPlaceholder,
		PlatformDiff: platformDiff(kind, opts.Number),
		Base:         base,
	}
	cmds.Explanation = explain(kind, targetBranch, cmds)
	return cmds
}

// FormatDiffFile returns DiffFile for a concrete path.
func (c Commands) FormatDiffFile(path string) string {
	return strings.ReplaceAll(c.DiffFile, PathPlaceholder, path)
}

// GitDiff is the full-range diff without a path filter.
func (c Commands) GitDiff() string {
	return "git --no-pager diff " + c.Base + "...HEAD"
}

// PagerEnv disables paging for git and the hosting CLIs.
func PagerEnv() []string {
	return []string{
		"GIT_PAGER=cat",
		"PAGER=cat",
		"GH_PAGER=cat",
		"GLAB_PAGER=cat",
	}
}

func platformDiff(kind platform.Kind, number int) string {
	switch kind {
	case platform.GitLab:
		return fmt.Sprintf("GLAB_PAGER=cat PAGER=cat glab mr diff %d", number)
	default:
		return fmt.Sprintf("GH_PAGER=cat gh pr diff %d", number)
	}
}

func explain(kind platform.Kind, targetBranch string, c Commands) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Diffs use three-dot ranges (%s...HEAD): they show only the changes this branch introduced since it diverged from %s. ", c.Base, targetBranch)
	b.WriteString("Never use a two-dot range; it also shows commits that landed on the target branch afterwards, which are not part of this change.\n")
	fmt.Fprintf(&b, "List changed files with `%s` and inspect one file with `%s`.\n", c.ListFiles, c.DiffFile)
	tool := "gh pr diff"
	if kind == platform.GitLab {
		tool = "glab mr diff"
	}
	fmt.Fprintf(&b, "`%s` shows the hosting platform's view of the same diff. For a deleted file it may exit non-zero; treat that as a warning, not a failure.", tool)
	return b.String()
}
