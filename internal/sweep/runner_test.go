package sweep

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rtasched/internal/config"
	"rtasched/internal/workload"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Utilizations = []float64{0.9, 0.3, 1.2}
	cfg.TaskSetsPerPoint = 10
	cfg.Workers = 2
	return cfg
}

func TestRun_PointsOrderedByUtilization(t *testing.T) {
	r := New(smallConfig())
	r.SetLogger(nil)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	points := res.Points()
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, want := range []float64{0.3, 0.9, 1.2} {
		if points[i].Utilization != want {
			t.Fatalf("position %d: expected U=%g, got %g", i, want, points[i].Utilization)
		}
		if points[i].Total != 10 {
			t.Fatalf("expected 10 task sets per point, got %d", points[i].Total)
		}
	}

	// below the Liu & Layland bound every set is schedulable
	if ratio, ok := res.Ratio(0.3); !ok || ratio != 1 {
		t.Fatalf("expected ratio 1 at U=0.3, got %g (%v)", ratio, ok)
	}
	// above full utilization none is
	if ratio, ok := res.Ratio(1.2); !ok || ratio != 0 {
		t.Fatalf("expected ratio 0 at U=1.2, got %g (%v)", ratio, ok)
	}
	if _, ok := res.Ratio(0.5); ok {
		t.Fatalf("unmeasured point must not be reported")
	}
}

func TestRun_Reproducible(t *testing.T) {
	a := New(smallConfig())
	a.SetLogger(nil)
	b := New(smallConfig())
	b.SetLogger(nil)

	ra, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rb, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	pa, pb := ra.Points(), rb.Points()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
	if ra.RunID == rb.RunID {
		t.Fatalf("expected distinct run IDs")
	}
}

func TestRun_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	r := New(smallConfig())
	r.SetLogger(nil)
	if err := r.EnableCSVLogging(path); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "run_id" || rows[1][0] != r.RunID().String() {
		t.Fatalf("unexpected csv contents: %v", rows)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.PeriodMin, cfg.PeriodMax = 100, 10
	r := New(cfg)
	r.SetLogger(nil)
	if _, err := r.Run(context.Background()); !errors.Is(err, workload.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	cfg = smallConfig()
	cfg.NumTasks = 0
	r = New(cfg)
	r.SetLogger(nil)
	if _, err := r.Run(context.Background()); !errors.Is(err, workload.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(smallConfig())
	r.SetLogger(nil)
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEventKind_String(t *testing.T) {
	for kind, want := range map[EventKind]string{
		EventStart:     "Start",
		EventPointDone: "PointDone",
		EventFinish:    "Finish",
		EventKind(99):  "Unknown",
	} {
		if got := kind.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestRun_RepeatedUtilizations(t *testing.T) {
	cfg := smallConfig()
	cfg.Utilizations = []float64{0.5, 0.5, 0.6}
	path := filepath.Join(t.TempDir(), "sweep.csv")
	r := New(cfg)
	r.SetLogger(nil)
	if err := r.EnableCSVLogging(path); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := len(res.Points()); got != 2 {
		t.Fatalf("expected 2 points, got %d", got)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
}

func TestRun_SecondCallRejected(t *testing.T) {
	r := New(smallConfig())
	r.SetLogger(nil)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := r.Run(context.Background()); !errors.Is(err, ErrRunnerUsed) {
		t.Fatalf("expected ErrRunnerUsed, got %v", err)
	}
}
