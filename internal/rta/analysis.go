// Package rta implements response-time analysis for fixed-priority
// preemptive scheduling on a single processor.
//
// The base recurrence (no jitter, no blocking) is
//
//	R(k+1) = C + sum over hp(i) of ceil(R(k) / Tj) * Cj,  R(0) = C
//
// iterated until it converges or exceeds the deadline.
package rta

import (
	"fmt"
	"math"

	"rtasched/internal/model"
)

const (
	// DefaultMaxIterations bounds the fixed-point iteration.
	DefaultMaxIterations = 1000

	epsilon = 1e-9
)

// ComputeResponseTime returns the worst-case response time of task under
// interference from hp, and false when the task misses its deadline or the
// iteration does not converge within maxIterations.
func ComputeResponseTime(task model.Task, hp []model.Task, maxIterations int) (float64, bool) {
	c, d := task.WCET(), task.Deadline()

	prev := c
	for k := 0; k < maxIterations; k++ {
		next := c
		for _, j := range hp {
			next += math.Ceil(prev/j.Period()) * j.WCET()
		}

		// deadline miss wins over convergence
		if next > d {
			return 0, false
		}
		if math.Abs(next-prev) < epsilon {
			return next, true
		}
		prev = next
	}
	return 0, false
}

// ResponseTime is ComputeResponseTime with DefaultMaxIterations.
func ResponseTime(task model.Task, hp []model.Task) (float64, bool) {
	return ComputeResponseTime(task, hp, DefaultMaxIterations)
}

// IsSchedulable reports whether task meets its deadline under hp.
func IsSchedulable(task model.Task, hp []model.Task) bool {
	_, ok := ResponseTime(task, hp)
	return ok
}

// Verdict is the outcome for one task. Response is meaningful only when
// Schedulable is true.
type Verdict struct {
	Response    float64
	Schedulable bool
}

func (v Verdict) String() string {
	if !v.Schedulable {
		return "unschedulable"
	}
	return fmt.Sprintf("%.6g", v.Response)
}

// TaskVerdict pairs an analyzed task with its outcome.
type TaskVerdict struct {
	Task model.Task
	Verdict
}

// Report is the result of analyzing a whole TaskSet.
type Report struct {
	Schedulable   bool
	ResponseTimes map[string]Verdict
	Order         []string      // keys of ResponseTimes, highest priority first
	Results       []TaskVerdict // one entry per task, highest priority first
}

// AnalyzeTaskSet runs RTA on every member of ts, highest priority first.
// An unschedulable task does not stop the analysis of the remaining ones.
func AnalyzeTaskSet(ts *model.TaskSet) Report {
	return Analyze(ts, DefaultMaxIterations)
}

// Analyze is AnalyzeTaskSet with an explicit iteration cap per task.
func Analyze(ts *model.TaskSet, maxIterations int) Report {
	sorted := ts.SortedByPriority()
	rep := Report{
		Schedulable:   true,
		ResponseTimes: make(map[string]Verdict, len(sorted)),
		Order:         make([]string, 0, len(sorted)),
		Results:       make([]TaskVerdict, 0, len(sorted)),
	}

	for _, task := range sorted {
		prio, _ := task.Priority()
		r, ok := ComputeResponseTime(task, ts.Above(prio), maxIterations)

		key := Key(task)
		if _, seen := rep.ResponseTimes[key]; !seen {
			rep.Order = append(rep.Order, key)
		}
		v := Verdict{Response: r, Schedulable: ok}
		// tasks sharing a name collapse to one map entry; Results keeps both
		rep.ResponseTimes[key] = v
		rep.Results = append(rep.Results, TaskVerdict{Task: task, Verdict: v})
		if !ok {
			rep.Schedulable = false
		}
	}
	return rep
}

// Key names a task in a Report: its name, or "Task_prio_<p>" when unnamed.
func Key(task model.Task) string {
	if task.Name() != "" {
		return task.Name()
	}
	prio, _ := task.Priority()
	return fmt.Sprintf("Task_prio_%d", prio)
}
