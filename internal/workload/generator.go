package workload

import (
	"fmt"
	"math"
	"math/rand"

	"rtasched/internal/model"
)

// minWCET keeps the flat generator away from zero-execution tasks.
const minWCET = 0.001

// Params configures GenerateTaskSet.
type Params struct {
	N                 int
	TargetUtilization float64
	PeriodMin         float64
	PeriodMax         float64
	DeadlineFactorMin float64 // D/T lower bound, in (0, 1]
	DeadlineFactorMax float64 // D/T upper bound, in (0, 1]
	Seed              int64
}

// DefaultParams returns periods in [10, 1000] and implicit deadlines.
func DefaultParams(n int, u float64, seed int64) Params {
	return Params{
		N:                 n,
		TargetUtilization: u,
		PeriodMin:         10,
		PeriodMax:         1000,
		DeadlineFactorMin: 1,
		DeadlineFactorMax: 1,
		Seed:              seed,
	}
}

// Validate checks the period and deadline-factor ranges. N and
// TargetUtilization are checked by UUniFast.
func (p Params) Validate() error {
	if !(p.PeriodMin > 0) {
		return badArg("period_min", p.PeriodMin, "must be positive")
	}
	if !(p.PeriodMax >= p.PeriodMin) {
		return badArg("period_max", p.PeriodMax, fmt.Sprintf("must be >= period_min (%g)", p.PeriodMin))
	}
	if !(p.DeadlineFactorMin > 0) {
		return badArg("deadline_factor_min", p.DeadlineFactorMin, "must be positive")
	}
	if !(p.DeadlineFactorMax >= p.DeadlineFactorMin) {
		return badArg("deadline_factor_max", p.DeadlineFactorMax,
			fmt.Sprintf("must be >= deadline_factor_min (%g)", p.DeadlineFactorMin))
	}
	if p.DeadlineFactorMax > 1 {
		return badArg("deadline_factor_max", p.DeadlineFactorMax, "cannot exceed 1.0 (D must be <= T)")
	}
	return nil
}

// GenerateTaskSet builds a Rate-Monotonic TaskSet of p.N tasks.
//
// One stream seeded from p.Seed feeds every draw, in this order: the n-1
// UUniFast draws, then for each task its period and (when the factor range
// is not a single value) its deadline factor. Tasks are named τ1..τn in
// generation order.
func GenerateTaskSet(p Params) (*model.TaskSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	utils, err := UUniFastRand(rng, p.N, p.TargetUtilization)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, p.N)
	for i, u := range utils {
		t := logUniform(rng, p.PeriodMin, p.PeriodMax)
		c := u * t

		factor := p.DeadlineFactorMin
		if p.DeadlineFactorMax != p.DeadlineFactorMin {
			factor = uniform(rng, p.DeadlineFactorMin, p.DeadlineFactorMax)
		}
		d := t * factor
		if c > d {
			d = c
		}

		task, err := model.NewTask(c, t, model.WithDeadline(d), model.WithName(taskName(i)))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return model.NewTaskSet(tasks)
}

// GenerateTasks is the flat variant: implicit deadlines, C floored at 0.001
// and capped at T, no priorities assigned.
func GenerateTasks(n int, uTotal, periodMin, periodMax float64, seed int64) ([]model.Task, error) {
	if n <= 0 {
		return nil, badArg("n", float64(n), "must be positive")
	}
	p := DefaultParams(n, uTotal, seed)
	p.PeriodMin, p.PeriodMax = periodMin, periodMax
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	utils, err := UUniFastRand(rng, n, uTotal)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, n)
	for i, u := range utils {
		t := logUniform(rng, periodMin, periodMax)
		c := math.Min(math.Max(u*t, minWCET), t)

		task, err := model.NewTask(c, t, model.WithName(taskName(i)))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func taskName(i int) string { return fmt.Sprintf("τ%d", i+1) }

// logUniform draws from [lo, hi] so that ln(x) is uniform.
func logUniform(rng *rand.Rand, lo, hi float64) float64 {
	x := math.Exp(uniform(rng, math.Log(lo), math.Log(hi)))
	// exp(log(x)) can drift by an ulp past the bounds
	return math.Min(math.Max(x, lo), hi)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
