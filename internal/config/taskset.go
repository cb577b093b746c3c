package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"rtasched/internal/model"
)

// TaskSetFile is the on-disk form of a task set:
//
//	tasks:
//	  - {name: τ1, c: 1, t: 4}
//	  - {name: τ2, c: 2, t: 6, d: 5, priority: 1}
type TaskSetFile struct {
	Tasks []TaskEntry `yaml:"tasks"`
}

// TaskEntry is one task; d and priority are optional.
type TaskEntry struct {
	Name     string   `yaml:"name,omitempty"`
	C        float64  `yaml:"c"`
	T        float64  `yaml:"t"`
	D        *float64 `yaml:"d"`
	Priority *int     `yaml:"priority"`
}

// LoadTaskSet reads and builds a task set from a YAML file.
func LoadTaskSet(path string) (*model.TaskSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTaskSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// ParseTaskSet builds a task set from YAML. Construction errors from the
// model package are returned unchanged so callers can tell them apart.
func ParseTaskSet(data []byte) (*model.TaskSet, error) {
	var doc TaskSetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task set: %w", err)
	}

	tasks := make([]model.Task, 0, len(doc.Tasks))
	for _, e := range doc.Tasks {
		opts := []model.TaskOption{model.WithName(e.Name)}
		if e.D != nil {
			opts = append(opts, model.WithDeadline(*e.D))
		}
		if e.Priority != nil {
			opts = append(opts, model.WithPriority(*e.Priority))
		}
		task, err := model.NewTask(e.C, e.T, opts...)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return model.NewTaskSet(tasks)
}

// EncodeTaskSet writes ts in insertion order with every field filled in, so
// the output reloads to the same priorities.
func EncodeTaskSet(ts *model.TaskSet) ([]byte, error) {
	var doc TaskSetFile
	for _, task := range ts.Tasks() {
		d := task.Deadline()
		e := TaskEntry{Name: task.Name(), C: task.WCET(), T: task.Period(), D: &d}
		if p, ok := task.Priority(); ok {
			e.Priority = &p
		}
		doc.Tasks = append(doc.Tasks, e)
	}
	return yaml.Marshal(doc)
}
