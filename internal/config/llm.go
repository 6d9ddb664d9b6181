package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LLM holds the credentials and endpoint handed to the agent runtime.
type LLM struct {
	APIKey string

	// KeySource names the variable the key came from ("" when none).
	KeySource string

	BaseURL string
}

// ResolveLLM picks the API key and base URL from the environment.
// Precedence: LLM_API_KEY, ANTHROPIC_API_KEY, then OPENAI_API_KEY. The
// OpenAI key only applies with LLM_BASE_URL set, since it authenticates
// nothing against the Anthropic API.
func ResolveLLM(env Env) LLM {
	baseURL := strings.TrimSpace(Get(env, "LLM_BASE_URL"))
	names := []string{"LLM_API_KEY", "ANTHROPIC_API_KEY"}
	if baseURL != "" {
		names = append(names, "OPENAI_API_KEY")
	}
	key, source := FirstSet(env, names...)
	return LLM{
		APIKey:    key,
		KeySource: source,
		BaseURL:   baseURL,
	}
}

// AgentEnv renders the LLM settings as environment entries for the
// claude subprocess.
func (l LLM) AgentEnv() []string {
	var out []string
	if l.APIKey != "" {
		out = append(out, "ANTHROPIC_API_KEY="+l.APIKey)
	}
	if l.BaseURL != "" {
		out = append(out, "ANTHROPIC_BASE_URL="+l.BaseURL)
	}
	return out
}

var modelPrefixes = []string{"anthropic/", "claude/"}

// NormalizeModel strips provider prefixes so the id can be passed to the
// claude CLI and looked up in the price table.
func NormalizeModel(model string) string {
	m := strings.TrimSpace(model)
	for _, p := range modelPrefixes {
		if strings.HasPrefix(strings.ToLower(m), p) {
			return m[len(p):]
		}
	}
	return m
}

// reasoningBudgets maps an effort level to a thinking token budget.
var reasoningBudgets = map[string]int{
	"low":    4000,
	"medium": 10000,
	"high":   31999,
}

// ReasoningBudget returns the thinking token budget for effort. An empty
// effort returns 0.
func ReasoningBudget(effort string) (int, error) {
	e := strings.ToLower(strings.TrimSpace(effort))
	if e == "" {
		return 0, nil
	}
	budget, ok := reasoningBudgets[e]
	if !ok {
		return 0, fmt.Errorf("invalid reasoning effort %q (must be low, medium or high)", effort)
	}
	return budget, nil
}

// ThinkingEnv renders the budget for the subprocess environment.
func ThinkingEnv(effort string) []string {
	budget, err := ReasoningBudget(effort)
	if err != nil || budget == 0 {
		return nil
	}
	return []string{"MAX_THINKING_TOKENS=" + strconv.Itoa(budget)}
}
