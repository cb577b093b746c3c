package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors sweep.yml
type Config struct {
	Utilizations      []float64 `yaml:"utilizations"`        // 0.1 .. 0.9 (by default)
	TaskSetsPerPoint  int       `yaml:"task_sets_per_point"` // 150 (by default)
	NumTasks          int       `yaml:"num_tasks"`           // 5 (by default)
	PeriodMin         float64   `yaml:"period_min"`          // 10 (by default)
	PeriodMax         float64   `yaml:"period_max"`          // 1000 (by default)
	DeadlineFactorMin float64   `yaml:"deadline_factor_min"` // 1.0 (by default)
	DeadlineFactorMax float64   `yaml:"deadline_factor_max"` // 1.0 (by default)
	Seed              int64     `yaml:"seed"`                // 42 (by default)
	Workers           int       `yaml:"workers"`             // 4 (by default)
	MaxIterations     int       `yaml:"max_iterations"`      // 1000 (by default)
}

// If the config file is not found, we use default values
func Default() Config {
	return Config{
		Utilizations:      []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
		TaskSetsPerPoint:  150,
		NumTasks:          5,
		PeriodMin:         10,
		PeriodMax:         1000,
		DeadlineFactorMin: 1,
		DeadlineFactorMax: 1,
		Seed:              42,
		Workers:           4,
		MaxIterations:     1000,
	}
}

// Load reads YAML and overrides defaults; empty path or a missing file means
// defaults only. A malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}

	// sanity clamps
	cfg.Utilizations = UniqueUtilizations(cfg.Utilizations)
	if len(cfg.Utilizations) == 0 {
		cfg.Utilizations = Default().Utilizations
	}
	if cfg.TaskSetsPerPoint <= 0 {
		cfg.TaskSetsPerPoint = 150
	}
	if cfg.NumTasks <= 0 {
		cfg.NumTasks = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}

	// Period and deadline ranges are left as written; the generator rejects
	// inverted or out-of-range values with a descriptive error.
	return cfg, nil
}

// UniqueUtilizations drops repeated points, keeping the first occurrence of
// each value in its original position.
func UniqueUtilizations(us []float64) []float64 {
	seen := make(map[float64]bool, len(us))
	out := make([]float64, 0, len(us))
	for _, u := range us {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
