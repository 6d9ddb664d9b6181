// Package review parses the agent's structured review and renders it as
// markdown.
package review

// LineRange is an inclusive line span.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CodeLocation points at the code a finding is about.
type CodeLocation struct {
	AbsoluteFilePath string    `json:"absolute_file_path"`
	LineRange        LineRange `json:"line_range"`
}

// Finding is one reported issue.
type Finding struct {
	Title           string       `json:"title"`
	Body            string       `json:"body"`
	ConfidenceScore float64      `json:"confidence_score"`
	Priority        *int         `json:"priority,omitempty"`
	CodeLocation    CodeLocation `json:"code_location"`
}

// Review is the agent's verdict on a change.
type Review struct {
	Findings               []Finding `json:"findings"`
	OverallCorrectness     string    `json:"overall_correctness"`
	OverallExplanation     string    `json:"overall_explanation"`
	OverallConfidenceScore float64   `json:"overall_confidence_score"`
}

// Correct is the overall_correctness value for an acceptable change.
const Correct = "patch is correct"

// Format records how a review was recovered from the agent's answer.
type Format string

const (
	// FormatJSON: the whole answer was a JSON review.
	FormatJSON Format = "json"
	// FormatEmbedded: a JSON review was found inside surrounding prose.
	FormatEmbedded Format = "embedded"
	// FormatText: no JSON; the answer is kept as the explanation.
	FormatText Format = "text"
)
