package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rtasched/internal/model"
	"rtasched/internal/rta"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.TaskSetsPerPoint != 150 || cfg.NumTasks != 5 || cfg.Seed != 42 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Utilizations) != 9 {
		t.Fatalf("expected 9 default utilization points, got %v", cfg.Utilizations)
	}

	missing, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if missing.Workers != cfg.Workers {
		t.Fatalf("expected defaults for a missing file, got %+v", missing)
	}
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	path := writeFile(t, "sweep.yml", `
utilizations: [0.5, 0.95]
task_sets_per_point: 20
num_tasks: 8
seed: 7
workers: -3
period_min: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(cfg.Utilizations) != 2 || cfg.Utilizations[1] != 0.95 {
		t.Fatalf("expected overridden utilizations, got %v", cfg.Utilizations)
	}
	if cfg.TaskSetsPerPoint != 20 || cfg.NumTasks != 8 || cfg.Seed != 7 || cfg.PeriodMin != 5 {
		t.Fatalf("expected overrides, got %+v", cfg)
	}
	if cfg.PeriodMax != 1000 {
		t.Fatalf("unset fields keep defaults, got %+v", cfg)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected workers clamped to 4, got %d", cfg.Workers)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeFile(t, "bad.yml", "num_tasks: [oops\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseTaskSet(t *testing.T) {
	ts, err := ParseTaskSet([]byte(`
tasks:
  - {name: τ1, c: 1, t: 4, priority: 0}
  - {name: τ2, c: 2, t: 6, priority: 1}
`))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rep := rta.AnalyzeTaskSet(ts)
	if v := rep.ResponseTimes["τ2"]; !v.Schedulable || math.Abs(v.Response-3) > 1e-9 {
		t.Fatalf("expected τ2 response 3, got %+v", v)
	}
}

func TestParseTaskSet_ModelErrors(t *testing.T) {
	_, err := ParseTaskSet([]byte("tasks:\n  - {name: bad, c: 11, t: 10}\n"))
	if !errors.Is(err, model.ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}

	_, err = ParseTaskSet([]byte("tasks: [{name: a, c: 1, t: .inf}]\n"))
	if !errors.Is(err, model.ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask for an infinite period, got %v", err)
	}

	_, err = ParseTaskSet([]byte("tasks:\n  - {c: 1, t: 10, priority: 0}\n  - {c: 1, t: 20}\n"))
	if !errors.Is(err, model.ErrInconsistentPriority) {
		t.Fatalf("expected ErrInconsistentPriority, got %v", err)
	}
}

func TestEncodeTaskSet_Reloads(t *testing.T) {
	orig, err := model.NewTaskSet([]model.Task{
		model.MustTask(2, 10, model.WithName("slow")),
		model.MustTask(1, 4, model.WithName("fast"), model.WithDeadline(3)),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	data, err := EncodeTaskSet(orig)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	path := writeFile(t, "ts.yml", string(data))
	got, err := LoadTaskSet(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v\n%s", err, data)
	}
	want := orig.SortedByPriority()
	for i, task := range got.SortedByPriority() {
		wp, _ := want[i].Priority()
		gp, _ := task.Priority()
		if task.Name() != want[i].Name() || gp != wp || task.Deadline() != want[i].Deadline() {
			t.Fatalf("task %d: expected %v, got %v", i, want[i], task)
		}
	}
}

func TestLoad_RepeatedUtilizations(t *testing.T) {
	path := writeFile(t, "sweep.yml", "utilizations: [0.5, 0.5, 0.6, 0.5]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(cfg.Utilizations) != 2 || cfg.Utilizations[0] != 0.5 || cfg.Utilizations[1] != 0.6 {
		t.Fatalf("expected [0.5 0.6], got %v", cfg.Utilizations)
	}
}
