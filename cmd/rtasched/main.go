package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"rtasched/internal/config"
	"rtasched/internal/model"
	"rtasched/internal/rta"
	"rtasched/internal/sweep"
	"rtasched/internal/workload"
)

const (
	exitOK            = 0
	exitUnschedulable = 1
	exitBadInput      = 2
	exitInternal      = 3
)

const usage = `usage: rtasched <command> [flags]

commands:
  analyze FILE   run response-time analysis on a YAML task set
  generate       print a random task set as YAML
  sweep          measure schedulability ratio across utilizations
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitBadInput
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:], stdout, stderr)
	case "generate":
		return runGenerate(args[1:], stdout, stderr)
	case "sweep":
		return runSweep(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return exitBadInput
	}
}

func runAnalyze(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	maxIter := fs.Int("max-iterations", rta.DefaultMaxIterations, "iteration cap per task")
	if err := fs.Parse(args); err != nil {
		return exitBadInput
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "analyze: expected exactly one task set file")
		return exitBadInput
	}

	ts, err := config.LoadTaskSet(fs.Arg(0))
	if err != nil {
		return reportError(stderr, err)
	}

	rep := rta.Analyze(ts, *maxIter)
	fmt.Fprintf(stdout, "tasks: %d, total utilization: %.4f\n", ts.Len(), ts.TotalUtilization())
	for _, res := range rep.Results {
		task := res.Task
		prio, _ := task.Priority()
		fmt.Fprintf(stdout, "  [%3d] %-12s C=%-10.4g T=%-10.4g D=%-10.4g R=%s\n",
			prio, rta.Key(task), task.WCET(), task.Period(), task.Deadline(), res.Verdict)
	}

	if !rep.Schedulable {
		fmt.Fprintln(stdout, "verdict: UNSCHEDULABLE")
		return exitUnschedulable
	}
	fmt.Fprintln(stdout, "verdict: schedulable")
	return exitOK
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", 5, "number of tasks")
	u := fs.Float64("u", 0.7, "target total utilization")
	pmin := fs.Float64("pmin", 10, "minimum period")
	pmax := fs.Float64("pmax", 1000, "maximum period")
	dmin := fs.Float64("dmin", 1, "minimum deadline factor D/T")
	dmax := fs.Float64("dmax", 1, "maximum deadline factor D/T")
	seed := fs.Int64("seed", 42, "random seed")
	if err := fs.Parse(args); err != nil {
		return exitBadInput
	}

	ts, err := workload.GenerateTaskSet(workload.Params{
		N:                 *n,
		TargetUtilization: *u,
		PeriodMin:         *pmin,
		PeriodMax:         *pmax,
		DeadlineFactorMin: *dmin,
		DeadlineFactorMax: *dmax,
		Seed:              *seed,
	})
	if err != nil {
		return reportError(stderr, err)
	}
	out, err := config.EncodeTaskSet(ts)
	if err != nil {
		return reportError(stderr, err)
	}
	stdout.Write(out)
	return exitOK
}

func runSweep(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "sweep YAML config (defaults when empty)")
	csvPath := fs.String("csv", "", "write per-point results to this CSV file")
	if err := fs.Parse(args); err != nil {
		return exitBadInput
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return reportError(stderr, err)
	}

	r := sweep.New(cfg)
	if *csvPath != "" {
		if err := r.EnableCSVLogging(*csvPath); err != nil {
			return reportError(stderr, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := r.Run(ctx)
	if err != nil {
		return reportError(stderr, err)
	}

	fmt.Fprintf(stdout, "run %s\n", res.RunID)
	fmt.Fprintln(stdout, "   U     ratio  schedulable")
	for _, p := range res.Points() {
		fmt.Fprintf(stdout, "%6.3f  %6.3f  %4d/%d\n", p.Utilization, p.Ratio, p.Schedulable, p.Total)
	}
	return exitOK
}

// reportError prints err and maps input errors to exitBadInput.
func reportError(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)
	switch {
	case errors.Is(err, model.ErrInvalidTask),
		errors.Is(err, model.ErrInconsistentPriority),
		errors.Is(err, model.ErrMissingPriority),
		errors.Is(err, workload.ErrInvalidArgument),
		errors.Is(err, os.ErrNotExist):
		return exitBadInput
	default:
		return exitInternal
	}
}
