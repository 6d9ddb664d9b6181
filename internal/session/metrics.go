package session

import "time"

// Metrics aggregates token usage for one session. Deltas are ignored once
// the metrics are finalized.
type Metrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	CacheHitTokens int     `json:"cache_hit_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	EstimatedCost  float64 `json:"estimated_cost_usd"`
	Model          string  `json:"model"`

	finalized bool
}

// Add applies a usage delta.
func (m *Metrics) Add(u Usage) {
	if m.finalized {
		return
	}
	m.InputTokens += u.InputTokens
	m.OutputTokens += u.OutputTokens
	m.CacheHitTokens += u.CacheHitTokens
	m.TotalTokens = m.InputTokens + m.OutputTokens
}

// Finalize records elapsed time and cost. Only the first call has effect;
// it reports whether this call finalized.
func (m *Metrics) Finalize(elapsed time.Duration, prices PriceTable) bool {
	if m.finalized {
		return false
	}
	m.finalized = true
	m.TotalTokens = m.InputTokens + m.OutputTokens
	m.ElapsedSeconds = elapsed.Seconds()
	m.EstimatedCost = prices.Cost(m.Model, m.Usage())
	return true
}

// Finalized reports whether Finalize has run.
func (m *Metrics) Finalized() bool {
	return m.finalized
}

// Usage returns the accumulated totals.
func (m *Metrics) Usage() Usage {
	return Usage{
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		CacheHitTokens: m.CacheHitTokens,
	}
}

// Elapsed returns ElapsedSeconds as a duration.
func (m *Metrics) Elapsed() time.Duration {
	return time.Duration(m.ElapsedSeconds * float64(time.Second))
}
