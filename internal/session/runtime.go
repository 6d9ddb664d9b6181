package session

import (
	"context"
	"errors"
	"fmt"
)

// Conversation is everything the runtime needs to start the agent.
type Conversation struct {
	Instruction  string
	WorkDir      string
	Model        string
	MaxTurns     int
	AllowedTools []string

	// Env is appended to the agent process environment.
	Env []string
}

// Runtime drives one agent conversation to completion, reporting progress
// through emit. emit may be called from any goroutine but not concurrently.
type Runtime interface {
	Run(ctx context.Context, conv Conversation, emit func(Event)) error
}

// ErrNoAnswer is the failure recorded when the agent ends without a final
// answer and no other error.
var ErrNoAnswer = errors.New("agent produced no final answer")

// StartError is returned by a Runtime that could not launch the agent.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start agent: %v", e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// AgentStartFailedError is returned by Manager.Run when the runtime could
// not start. It is not retried.
type AgentStartFailedError struct {
	Err error
}

func (e *AgentStartFailedError) Error() string {
	return fmt.Sprintf("agent failed to start: %v", e.Err)
}

func (e *AgentStartFailedError) Unwrap() error {
	return e.Err
}

// RuntimeError is an error the agent reported in its own event stream.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return "agent runtime error: " + e.Message
}
