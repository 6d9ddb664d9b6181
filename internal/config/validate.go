package config

import (
	"errors"
	"fmt"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Validate checks all config values. Returns joined errors for every
// failure, or nil.
func (c *Config) Validate() error {
	var errs []error

	if c.Model == "" {
		errs = append(errs, &ValidationError{
			Field:   "model",
			Value:   c.Model,
			Message: "must not be empty",
		})
	}

	if c.Claude.Command == "" {
		errs = append(errs, &ValidationError{
			Field:   "claude.command",
			Value:   c.Claude.Command,
			Message: "must not be empty",
		})
	}

	if c.Claude.MaxTurns == 0 || c.Claude.MaxTurns < -1 {
		errs = append(errs, &ValidationError{
			Field:   "claude.max_turns",
			Value:   c.Claude.MaxTurns,
			Message: "must be positive, or -1 for unlimited",
		})
	}

	if _, err := ReasoningBudget(c.ReasoningEffort); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "reasoning_effort",
			Value:   c.ReasoningEffort,
			Message: "must be one of low, medium, high",
		})
	}

	return errors.Join(errs...)
}
