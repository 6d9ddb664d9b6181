// Package skills discovers repository-specific review guidance.
//
// Three tiers are searched in the workspace root:
//
//  1. .cursorrules
//  2. the first of AGENTS.md, agents.md, agent.md (only without tier 1)
//  3. every .hodor/skills/*.md, in lexical order
//
// Tier-3 files may carry a YAML front-matter block listing trigger
// keywords; such a skill applies only when a keyword occurs in the review
// context.
package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Tier ranks where a skill was found.
type Tier int

const (
	TierCursorRules Tier = 1
	TierAgents      Tier = 2
	TierModular     Tier = 3
)

// SkillsDir is the tier-3 directory, relative to the workspace root.
const SkillsDir = ".hodor/skills"

var agentFiles = []string{"AGENTS.md", "agents.md", "agent.md"}

// Skill is one guidance file.
type Skill struct {
	// SourcePath is relative to the workspace root, slash-separated.
	SourcePath string
	Tier       Tier
	Activation Activation
	Body       string
}

// Name returns the skill's file name.
func (s Skill) Name() string {
	return filepath.Base(s.SourcePath)
}

// Discover returns the skills under root in tier order.
func Discover(root string) ([]Skill, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("skills root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("skills root %s is not a directory", root)
	}

	var out []Skill

	tier1, found := loadPlain(root, ".cursorrules", TierCursorRules)
	if found {
		if tier1 != nil {
			out = append(out, *tier1)
		}
	} else {
		for _, name := range agentFiles {
			if s, ok := loadPlain(root, name, TierAgents); ok {
				if s != nil {
					out = append(out, *s)
				}
				break
			}
		}
	}

	modular, err := loadModular(root)
	if err != nil {
		return nil, err
	}
	return append(out, modular...), nil
}

// Select returns the skills whose activation matches corpus, keeping order.
func Select(all []Skill, corpus string) []Skill {
	var out []Skill
	for _, s := range all {
		if s.Activation.Matches(corpus) {
			out = append(out, s)
		}
	}
	return out
}

// loadPlain reads a tier-1 or tier-2 file. found reports whether a regular
// file exists; the skill is nil when it could not be read.
func loadPlain(root, name string, tier Tier) (skill *Skill, found bool) {
	path := filepath.Join(root, name)
	if !isRegularFile(path) {
		return nil, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("WARN: skipping skill %s: %v", name, err)
		return nil, true
	}
	return &Skill{
		SourcePath: name,
		Tier:       tier,
		Activation: Unconditional{},
		Body:       string(content),
	}, true
}

func loadModular(root string) ([]Skill, error) {
	dir := filepath.Join(root, filepath.FromSlash(SkillsDir))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		log.Printf("WARN: skipping %s: %v", SkillsDir, err)
		return nil, nil
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Skill
	for _, name := range names {
		rel := SkillsDir + "/" + name
		s, err := parseModular(filepath.Join(dir, name), rel)
		if err != nil {
			log.Printf("WARN: skipping skill %s: %v", rel, err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func parseModular(path, rel string) (Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, err
	}
	fm, body, err := splitFrontmatter(content)
	if err != nil {
		return Skill{}, err
	}
	h, err := parseHeader(fm)
	if err != nil {
		return Skill{}, err
	}
	return Skill{
		SourcePath: rel,
		Tier:       TierModular,
		Activation: NewActivation(h.Triggers),
		Body:       strings.TrimLeft(string(body), "\n"),
	}, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
