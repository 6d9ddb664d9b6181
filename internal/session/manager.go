// Package session runs one review conversation with the agent runtime and
// turns its event stream into a Result.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Status is the outcome of a session.
type Status string

const (
	StatusCompleted                 Status = "completed"
	StatusCompletedWithRuntimeError Status = "completed_with_runtime_error"
	StatusFailed                    Status = "failed"
)

// Result is the outcome of Manager.Run.
type Result struct {
	Body    string
	Metrics Metrics
	Status  Status

	// Err is the runtime error for completed_with_runtime_error and the
	// cause for failed.
	Err error
}

// HasBody reports whether a review was produced.
func (r *Result) HasBody() bool {
	return r.Status != StatusFailed
}

// Input describes one review session.
type Input struct {
	Conversation
}

// Manager drives a Runtime and aggregates what it reports.
type Manager struct {
	runtime   Runtime
	observers []Observer

	// Prices defaults to DefaultPrices.
	Prices PriceTable

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewManager returns a manager that fans events out to observers in order.
func NewManager(rt Runtime, observers ...Observer) *Manager {
	return &Manager{runtime: rt, observers: observers}
}

// AddObserver registers another observer. Not safe during Run.
func (m *Manager) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// Run executes the session. The only error returned is
// *AgentStartFailedError; every other failure is reported in the Result.
func (m *Manager) Run(ctx context.Context, in Input) (*Result, error) {
	start := m.now()
	prices := m.Prices
	if prices == nil {
		prices = DefaultPrices
	}

	var (
		mu         sync.Mutex
		metrics    = Metrics{Model: in.Model}
		answer     answerRegister
		reported   *RuntimeError
	)

	emit := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Time.IsZero() {
			ev.Time = m.now()
		}
		switch ev.Type {
		case EventMetricsDelta:
			metrics.Add(ev.Usage)
		case EventFinalAnswer:
			answer.Set(ev.Text)
		case EventRuntimeError:
			reported = &RuntimeError{Message: ev.Text}
		}
		for _, o := range m.observers {
			o.Observe(ev)
		}
	}

	err := m.runtime.Run(ctx, in.Conversation, emit)

	var startErr *StartError
	if errors.As(err, &startErr) {
		return nil, &AgentStartFailedError{Err: startErr.Err}
	}

	mu.Lock()
	defer mu.Unlock()

	metrics.Finalize(m.now().Sub(start), prices)
	if err == nil && reported != nil {
		err = reported
	}

	result := &Result{Metrics: metrics}
	body, ok := answer.Get()
	switch {
	case ok && err == nil:
		result.Status = StatusCompleted
		result.Body = body
	case ok:
		result.Status = StatusCompletedWithRuntimeError
		result.Body = body
		result.Err = err
	default:
		result.Status = StatusFailed
		result.Err = err
		if result.Err == nil {
			result.Err = ErrNoAnswer
		}
	}
	return result, nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
