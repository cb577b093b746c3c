// internal/sweep/runner.go

package sweep

import (
	"context"
	"encoding/csv"
	"errors"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/google/uuid"

	"rtasched/internal/config"
	"rtasched/internal/rta"
	"rtasched/internal/workload"
)

// ErrRunnerUsed is returned by Run on a Runner that already ran.
var ErrRunnerUsed = errors.New("sweep runner already used")

// Point is the schedulability ratio measured at one target utilization.
type Point struct {
	Utilization float64
	Schedulable int // task sets that passed RTA
	Invalid     int // task sets that could not be generated; counted as failures
	Total       int
	Ratio       float64
}

// Result holds the points of a finished sweep ordered by utilization.
type Result struct {
	RunID  uuid.UUID
	points *treemap.Map // float64 -> Point
}

func newResult(id uuid.UUID) *Result {
	return &Result{RunID: id, points: treemap.NewWith(utils.Float64Comparator)}
}

// Points returns the measured points by ascending utilization.
func (r *Result) Points() []Point {
	out := make([]Point, 0, r.points.Size())
	for _, v := range r.points.Values() {
		out = append(out, v.(Point))
	}
	return out
}

// Ratio returns the schedulability ratio at utilization u.
func (r *Result) Ratio(u float64) (float64, bool) {
	v, ok := r.points.Get(u)
	if !ok {
		return 0, false
	}
	return v.(Point).Ratio, true
}

// Runner measures schedulability ratios across a utilization sweep and
// streams progress events.
type Runner struct {
	cfg     config.Config
	result  *Result
	eventCh chan Event // progress events, consumed by Run
	used    bool

	// logging-related
	logger    *log.Logger
	csvFile   *os.File
	csvWriter *csv.Writer
}

// New creates a Runner for the given configuration.
// Repeated utilization points are measured once.
func New(cfg config.Config) *Runner {
	cfg.Utilizations = config.UniqueUtilizations(cfg.Utilizations)
	return &Runner{
		cfg:    cfg,
		result: newResult(uuid.New()),
		logger: log.Default(),
	}
}

// SetLogger replaces the default logger; nil silences progress output.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

// RunID identifies this sweep in logs and CSV output.
func (r *Runner) RunID() uuid.UUID { return r.result.RunID }

// EnableCSVLogging opens the given file path for CSV output of points.
// Must be called before Run().
func (r *Runner) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write([]string{"run_id", "timestamp", "utilization", "schedulable", "invalid", "total", "ratio"}); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	r.csvFile = f
	r.csvWriter = w
	return nil
}

// Run executes the sweep. A Runner runs once; later calls return
// ErrRunnerUsed. A cancelled context stops outstanding work and its error is
// returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.used {
		return nil, ErrRunnerUsed
	}
	r.used = true

	if r.cfg.NumTasks <= 0 {
		r.closeCSV()
		return nil, &workload.ArgumentError{Arg: "num_tasks", Value: float64(r.cfg.NumTasks), Msg: "must be positive"}
	}
	params := r.params(0, 0)
	if err := params.Validate(); err != nil {
		r.closeCSV()
		return nil, err
	}

	// start loop
	r.eventCh = make(chan Event, len(r.cfg.Utilizations)+2)
	go r.loop(ctx)

	// consume events
	for ev := range r.eventCh {
		r.handleEvent(ev)
	}

	if err := r.closeCSV(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.result, nil
}

func (r *Runner) closeCSV() error {
	if r.csvFile == nil {
		return nil
	}
	r.csvWriter.Flush()
	err := r.csvWriter.Error()
	if cerr := r.csvFile.Close(); err == nil {
		err = cerr
	}
	r.csvFile, r.csvWriter = nil, nil
	return err
}

// loop fans the utilization points out to a bounded worker pool.
func (r *Runner) loop(ctx context.Context) {
	defer close(r.eventCh)

	r.eventCh <- Event{Time: time.Now(), Kind: EventStart}

	jobs := make(chan float64)
	var wg sync.WaitGroup
	for w := 0; w < r.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				p, ok := r.measure(ctx, u)
				if !ok {
					continue
				}
				r.eventCh <- Event{Time: time.Now(), Kind: EventPointDone, Point: p}
			}
		}()
	}

feed:
	for _, u := range r.cfg.Utilizations {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- u:
		}
	}
	close(jobs)
	wg.Wait()

	r.eventCh <- Event{Time: time.Now(), Kind: EventFinish}
}

// measure generates and analyzes TaskSetsPerPoint task sets at utilization u.
// It reports false when ctx was cancelled before the point completed.
func (r *Runner) measure(ctx context.Context, u float64) (Point, bool) {
	p := Point{Utilization: u, Total: r.cfg.TaskSetsPerPoint}
	for i := 0; i < r.cfg.TaskSetsPerPoint; i++ {
		if ctx.Err() != nil {
			return Point{}, false
		}
		ts, err := workload.GenerateTaskSet(r.params(u, i))
		if err != nil {
			p.Invalid++
			continue
		}
		if rta.Analyze(ts, r.cfg.MaxIterations).Schedulable {
			p.Schedulable++
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(p.Schedulable) / float64(p.Total)
	}
	return p, true
}

// params derives the generator input for task set i at utilization u. The
// seed varies per point and per set so every set is reproducible on its own.
func (r *Runner) params(u float64, i int) workload.Params {
	return workload.Params{
		N:                 r.cfg.NumTasks,
		TargetUtilization: u,
		PeriodMin:         r.cfg.PeriodMin,
		PeriodMax:         r.cfg.PeriodMax,
		DeadlineFactorMin: r.cfg.DeadlineFactorMin,
		DeadlineFactorMax: r.cfg.DeadlineFactorMax,
		Seed:              r.cfg.Seed + int64(u*1000) + int64(i),
	}
}

func (r *Runner) workers() int {
	if r.cfg.Workers <= 0 {
		return 1
	}
	return r.cfg.Workers
}

func (r *Runner) handleEvent(ev Event) {
	switch ev.Kind {
	case EventStart:
		r.logf("sweep %s: %d points x %d task sets, n=%d",
			r.result.RunID, len(r.cfg.Utilizations), r.cfg.TaskSetsPerPoint, r.cfg.NumTasks)
		return
	case EventFinish:
		r.logf("sweep %s: finished, %d points", r.result.RunID, r.result.points.Size())
		return
	}

	p := ev.Point
	r.result.points.Put(p.Utilization, p)
	r.logf("sweep %s: U=%.3f => %4d/%4d schedulable (ratio=%.3f, invalid=%d)",
		r.result.RunID, p.Utilization, p.Schedulable, p.Total, p.Ratio, p.Invalid)

	// CSV output
	if r.csvWriter != nil {
		rec := []string{
			r.result.RunID.String(),
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatFloat(p.Utilization, 'f', -1, 64),
			strconv.Itoa(p.Schedulable),
			strconv.Itoa(p.Invalid),
			strconv.Itoa(p.Total),
			strconv.FormatFloat(p.Ratio, 'f', 4, 64),
		}
		r.csvWriter.Write(rec)
		r.csvWriter.Flush()
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
