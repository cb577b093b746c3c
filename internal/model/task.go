// internal/model/task.go

package model

import (
	"fmt"
	"math"
)

// Task describes one periodic or sporadic job template.
// Fields are unexported so a constructed Task can never be changed in place.
type Task struct {
	c           float64 // worst-case execution time (WCET)
	t           float64 // period, or minimum inter-arrival time
	d           float64 // relative deadline
	name        string
	priority    int // 0 is the highest priority
	hasPriority bool
}

// TaskOption customizes a Task at construction time.
type TaskOption func(*taskParams)

type taskParams struct {
	d           float64
	hasDeadline bool
	name        string
	priority    int
	hasPriority bool
}

// WithDeadline sets the relative deadline. Without it D equals T.
func WithDeadline(d float64) TaskOption {
	return func(p *taskParams) {
		p.d = d
		p.hasDeadline = true
	}
}

// WithName sets the task identifier.
func WithName(name string) TaskOption {
	return func(p *taskParams) { p.name = name }
}

// WithPriority assigns an explicit priority (lower value = higher priority).
func WithPriority(priority int) TaskOption {
	return func(p *taskParams) {
		p.priority = priority
		p.hasPriority = true
	}
}

// NewTask validates the parameters and returns an immutable Task.
// It requires finite C > 0, T > 0, D > 0 with C <= T, D <= T and C <= D.
func NewTask(c, t float64, opts ...TaskOption) (Task, error) {
	var p taskParams
	for _, opt := range opts {
		opt(&p)
	}
	if !p.hasDeadline {
		p.d = t
	}

	switch {
	case !(c > 0):
		return Task{}, invalidTask(p.name, "C", c, "must be positive")
	case !(t > 0):
		return Task{}, invalidTask(p.name, "T", t, "must be positive")
	case math.IsInf(c, 0):
		return Task{}, invalidTask(p.name, "C", c, "must be finite")
	case math.IsInf(t, 0):
		return Task{}, invalidTask(p.name, "T", t, "must be finite")
	case c > t:
		return Task{}, invalidTask(p.name, "C", c, fmt.Sprintf("cannot exceed T (%g)", t))
	case !(p.d > 0):
		return Task{}, invalidTask(p.name, "D", p.d, "must be positive")
	case math.IsInf(p.d, 0):
		return Task{}, invalidTask(p.name, "D", p.d, "must be finite")
	case p.d > t:
		return Task{}, invalidTask(p.name, "D", p.d, fmt.Sprintf("cannot exceed T (%g)", t))
	case c > p.d:
		return Task{}, invalidTask(p.name, "C", c, fmt.Sprintf("cannot exceed D (%g)", p.d))
	case p.hasPriority && p.priority < 0:
		return Task{}, invalidTask(p.name, "priority", float64(p.priority), "must be non-negative")
	}

	return Task{
		c:           c,
		t:           t,
		d:           p.d,
		name:        p.name,
		priority:    p.priority,
		hasPriority: p.hasPriority,
	}, nil
}

// MustTask is NewTask for fixed inputs known to be valid; it panics otherwise.
func MustTask(c, t float64, opts ...TaskOption) Task {
	task, err := NewTask(c, t, opts...)
	if err != nil {
		panic(err)
	}
	return task
}

func (t Task) WCET() float64     { return t.c }
func (t Task) Period() float64   { return t.t }
func (t Task) Deadline() float64 { return t.d }
func (t Task) Name() string      { return t.name }

// Priority returns the assigned priority and whether one is set.
func (t Task) Priority() (int, bool) { return t.priority, t.hasPriority }

// Utilization is C/T.
func (t Task) Utilization() float64 { return t.c / t.t }

// Prioritized returns a copy of t carrying the given priority.
// The parameters were already validated, so only the priority is checked.
func (t Task) Prioritized(priority int) (Task, error) {
	if priority < 0 {
		return Task{}, invalidTask(t.name, "priority", float64(priority), "must be non-negative")
	}
	t.priority = priority
	t.hasPriority = true
	return t, nil
}

func (t Task) String() string {
	prio := "none"
	if t.hasPriority {
		prio = fmt.Sprintf("%d", t.priority)
	}
	name := ""
	if t.name != "" {
		name = t.name + ": "
	}
	return fmt.Sprintf("Task(%sC=%g, T=%g, D=%g, prio=%s)", name, t.c, t.t, t.d, prio)
}
