package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTask          = errors.New("invalid task")
	ErrInconsistentPriority = errors.New("inconsistent priority assignment")
	ErrMissingPriority      = errors.New("task has no priority assigned")
)

// ValidationError reports a Task parameter that violates its invariants.
type ValidationError struct {
	Task  string
	Field string
	Value float64
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Task == "" {
		return fmt.Sprintf("%s: %s %s, got %g", ErrInvalidTask, e.Field, e.Msg, e.Value)
	}
	return fmt.Sprintf("%s %s: %s %s, got %g", ErrInvalidTask, e.Task, e.Field, e.Msg, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTask }

// InconsistentPriorityError reports a TaskSet whose members do not agree on
// priority assignment.
type InconsistentPriorityError struct {
	Msg string
}

func (e *InconsistentPriorityError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrInconsistentPriority.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInconsistentPriority, e.Msg)
}

func (e *InconsistentPriorityError) Unwrap() error { return ErrInconsistentPriority }

// MissingPriorityError reports a priority query on a Task without one.
type MissingPriorityError struct {
	Task string
}

func (e *MissingPriorityError) Error() string {
	if e == nil {
		return ""
	}
	if e.Task == "" {
		return ErrMissingPriority.Error()
	}
	return fmt.Sprintf("task %s: %s", e.Task, ErrMissingPriority)
}

func (e *MissingPriorityError) Unwrap() error { return ErrMissingPriority }

func invalidTask(name, field string, value float64, msg string) error {
	return &ValidationError{Task: name, Field: field, Value: value, Msg: msg}
}

func inconsistentf(format string, args ...any) error {
	return &InconsistentPriorityError{Msg: fmt.Sprintf(format, args...)}
}
