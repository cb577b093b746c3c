// internal/model/taskset.go

package model

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// TaskSet is an ordered collection of Tasks sharing one processor.
// Priority order is fixed at construction, so a TaskSet is safe for
// concurrent readers.
type TaskSet struct {
	tasks  []Task // insertion order, priorities attached
	sorted []Task // ascending priority value (highest priority first)
}

// NewTaskSet copies tasks into a new TaskSet. Either every task carries a
// priority or none does; in the latter case Rate-Monotonic priorities are
// assigned (shorter period = higher priority, ties keep insertion order).
func NewTaskSet(tasks []Task) (*TaskSet, error) {
	ts := &TaskSet{tasks: make([]Task, len(tasks))}
	copy(ts.tasks, tasks)

	assigned := 0
	for _, t := range ts.tasks {
		if t.hasPriority {
			assigned++
		}
	}

	var err error
	switch {
	case assigned == 0:
		err = ts.assignRateMonotonic()
	case assigned == len(ts.tasks):
		err = ts.orderByPriority()
	default:
		err = inconsistentf("%d of %d tasks have a priority; either all or none must",
			assigned, len(ts.tasks))
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// assignRateMonotonic orders tasks by (period, insertion index) and hands out
// priorities 0..n-1 in that order.
func (ts *TaskSet) assignRateMonotonic() error {
	rbt := redblacktree.NewWith(cmpRM)
	for i, t := range ts.tasks {
		rbt.Put(rmKey{period: t.t, seq: i}, i)
	}

	ts.sorted = make([]Task, 0, len(ts.tasks))
	prio := 0
	for it := rbt.Iterator(); it.Next(); prio++ {
		i := it.Value().(int)
		t, err := ts.tasks[i].Prioritized(prio)
		if err != nil {
			return err
		}
		ts.tasks[i] = t
		ts.sorted = append(ts.sorted, t)
	}
	return nil
}

// orderByPriority sorts explicitly prioritized tasks and rejects duplicates.
func (ts *TaskSet) orderByPriority() error {
	rbt := redblacktree.NewWithIntComparator()
	for i, t := range ts.tasks {
		if prev, dup := rbt.Get(t.priority); dup {
			return inconsistentf("tasks %q and %q share priority %d",
				ts.tasks[prev.(int)].name, t.name, t.priority)
		}
		rbt.Put(t.priority, i)
	}

	ts.sorted = make([]Task, 0, len(ts.tasks))
	for it := rbt.Iterator(); it.Next(); {
		ts.sorted = append(ts.sorted, ts.tasks[it.Value().(int)])
	}
	return nil
}

// Len returns the number of tasks.
func (ts *TaskSet) Len() int { return len(ts.tasks) }

// Tasks returns the members in insertion order.
func (ts *TaskSet) Tasks() []Task {
	out := make([]Task, len(ts.tasks))
	copy(out, ts.tasks)
	return out
}

// SortedByPriority returns the members highest priority first.
func (ts *TaskSet) SortedByPriority() []Task {
	out := make([]Task, len(ts.sorted))
	copy(out, ts.sorted)
	return out
}

// HigherPriorityThan returns the members whose priority is strictly higher
// than task's, highest first. task need not be a member.
func (ts *TaskSet) HigherPriorityThan(task Task) ([]Task, error) {
	if !task.hasPriority {
		return nil, &MissingPriorityError{Task: task.name}
	}
	return ts.Above(task.priority), nil
}

// Above returns the members with a priority value strictly below priority.
func (ts *TaskSet) Above(priority int) []Task {
	var out []Task
	for _, t := range ts.sorted {
		if t.priority >= priority {
			break
		}
		out = append(out, t)
	}
	return out
}

// TotalUtilization is the plain sum of member utilizations; it may exceed 1.
func (ts *TaskSet) TotalUtilization() float64 {
	var u float64
	for _, t := range ts.tasks {
		u += t.Utilization()
	}
	return u
}

// rmKey is the red-black tree key used for Rate-Monotonic ordering.
type rmKey struct {
	period float64
	seq    int
}

// cmpRM orders by period, then by insertion index.
func cmpRM(a, b any) int {
	ka, kb := a.(rmKey), b.(rmKey)
	switch {
	case ka.period < kb.period:
		return -1
	case ka.period > kb.period:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
