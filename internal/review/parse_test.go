package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "findings": [
    {
      "title": "Nil map write",
      "body": "cache is never initialized.",
      "confidence_score": 0.9,
      "priority": 1,
      "code_location": {"absolute_file_path": "/work/cache.go", "line_range": {"start": 10, "end": 12}}
    }
  ],
  "overall_correctness": "patch is incorrect",
  "overall_explanation": "One blocking bug.",
  "overall_confidence_score": 0.8
}`

func TestParse_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantFormat Format
		wantTitle  string
	}{
		{name: "whole answer", text: sampleJSON, wantFormat: FormatJSON, wantTitle: "Nil map write"},
		{name: "fenced", text: "Here is the review:\n```json\n" + sampleJSON + "\n```\nThanks.", wantFormat: FormatEmbedded, wantTitle: "Nil map write"},
		{name: "prose around object", text: "Review follows " + sampleJSON + " end", wantFormat: FormatEmbedded, wantTitle: "Nil map write"},
		{
			name:       "braces in strings",
			text:       `Note {not json} then {"findings":[{"title":"a } b","body":"","confidence_score":1,"code_location":{"absolute_file_path":"x","line_range":{"start":1,"end":1}}}]}`,
			wantFormat: FormatEmbedded,
			wantTitle:  "a } b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, format := Parse(tt.text)
			assert.Equal(t, tt.wantFormat, format)
			require.NotEmpty(t, r.Findings)
			assert.Equal(t, tt.wantTitle, r.Findings[0].Title)
		})
	}
}

func TestParse_Fields(t *testing.T) {
	r, format := Parse(sampleJSON)
	require.Equal(t, FormatJSON, format)

	f := r.Findings[0]
	require.NotNil(t, f.Priority)
	assert.Equal(t, 1, *f.Priority)
	assert.Equal(t, 0.9, f.ConfidenceScore)
	assert.Equal(t, CodeLocation{AbsoluteFilePath: "/work/cache.go", LineRange: LineRange{Start: 10, End: 12}}, f.CodeLocation)
	assert.Equal(t, "patch is incorrect", r.OverallCorrectness)
	assert.Equal(t, 0.8, r.OverallConfidenceScore)
}

func TestParse_PlainTextFallback(t *testing.T) {
	for _, text := range []string{"No issues found.", "Looks fine {but not json}", `"just a string"`, ""} {
		r, format := Parse(text)
		assert.Equal(t, FormatText, format, text)
		assert.Equal(t, text, r.OverallExplanation)
		assert.Empty(t, r.Findings)
	}
}

func TestBalancedObjects(t *testing.T) {
	text := `x {"a":{"b":"}"}} y {"c":1}`
	assert.Equal(t, []string{`{"a":{"b":"}"}}`}, balancedObjects(text, 1))
	assert.Equal(t, []string{`{"a":{"b":"}"}}`, `{"c":1}`}, balancedObjects(text, 2))
	assert.Equal(t, []string{`{"q":"\"}"}`}, balancedObjects(`{"q":"\"}"}`, 1))
	assert.Empty(t, balancedObjects(`{"open": true`, 1))
	assert.Empty(t, balancedObjects("none", 1))
}
