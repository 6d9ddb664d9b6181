package session

import "time"

// EventType identifies a session event.
type EventType string

const (
	EventCommandStarted  EventType = "command.started"
	EventCommandFinished EventType = "command.finished"
	EventReasoning       EventType = "agent.reasoning"
	EventFinalAnswer     EventType = "agent.answer"
	EventMetricsDelta    EventType = "metrics.delta"
	EventRuntimeError    EventType = "runtime.error"
)

// Usage is a token count delta. InputTokens includes CacheHitTokens.
type Usage struct {
	InputTokens    int
	OutputTokens   int
	CacheHitTokens int
}

// IsZero reports whether the delta is empty.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// Event is one observation of the running agent.
type Event struct {
	Type EventType
	Time time.Time

	// Tool, ToolID and Summary describe a command; set for
	// EventCommandStarted and EventCommandFinished.
	Tool    string
	ToolID  string
	Summary string

	// ExitCode is set for EventCommandFinished.
	ExitCode int

	// Text carries reasoning, the final answer, or the error message.
	Text string

	// Usage is set for EventMetricsDelta.
	Usage Usage
}

// Observer receives every event in emission order. Observers cannot
// influence the session.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
