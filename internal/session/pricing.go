package session

import (
	"strings"

	"github.com/RevCBH/hodor/internal/config"
)

// Price is the cost in USD per million tokens.
type Price struct {
	Input     float64
	Output    float64
	CacheRead float64
}

// PriceTable maps model id prefixes to prices.
type PriceTable map[string]Price

// DefaultPrices covers the Claude models hodor is normally run with.
var DefaultPrices = PriceTable{
	"claude-sonnet-4-5": {Input: 3, Output: 15, CacheRead: 0.30},
	"claude-sonnet-4":   {Input: 3, Output: 15, CacheRead: 0.30},
	"claude-opus-4-5":   {Input: 5, Output: 25, CacheRead: 0.50},
	"claude-opus-4-1":   {Input: 15, Output: 75, CacheRead: 1.50},
	"claude-opus-4":     {Input: 15, Output: 75, CacheRead: 1.50},
	"claude-haiku-4-5":  {Input: 1, Output: 5, CacheRead: 0.10},
	"claude-3-5-haiku":  {Input: 0.80, Output: 4, CacheRead: 0.08},
}

// Lookup finds the longest prefix of the normalized model id in the table.
func (t PriceTable) Lookup(model string) (Price, bool) {
	id := strings.ToLower(config.NormalizeModel(model))
	best := ""
	for prefix := range t {
		if strings.HasPrefix(id, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return Price{}, false
	}
	return t[best], true
}

// Cost prices u for model. Unknown models cost 0.
func (t PriceTable) Cost(model string, u Usage) float64 {
	p, ok := t.Lookup(model)
	if !ok {
		return 0
	}
	uncached := u.InputTokens - u.CacheHitTokens
	if uncached < 0 {
		uncached = 0
	}
	return (float64(uncached)*p.Input +
		float64(u.CacheHitTokens)*p.CacheRead +
		float64(u.OutputTokens)*p.Output) / 1e6
}
