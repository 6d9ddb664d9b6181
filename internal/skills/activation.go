package skills

import "strings"

// Activation decides whether a skill applies to a review.
type Activation interface {
	Matches(corpus string) bool
	isActivation()
}

// Unconditional skills always apply.
type Unconditional struct{}

func (Unconditional) Matches(string) bool { return true }
func (Unconditional) isActivation()       {}

// Triggered skills apply when any keyword occurs in the corpus.
type Triggered struct {
	// Keywords are lowercased and unique.
	Keywords []string
}

// Matches does a case-insensitive substring search for each keyword.
func (t Triggered) Matches(corpus string) bool {
	lower := strings.ToLower(corpus)
	for _, kw := range t.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (Triggered) isActivation() {}

// NewActivation normalizes raw trigger keywords. No usable keywords means
// the skill is unconditional.
func NewActivation(raw []string) Activation {
	seen := make(map[string]bool, len(raw))
	var keywords []string
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	if len(keywords) == 0 {
		return Unconditional{}
	}
	return Triggered{Keywords: keywords}
}
