// Package optimizer runs complete optimisation scenarios: it builds the
// tide record, wires the barrage evaluator into the evolutionary search
// and distils the final front into a ranked report.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/analysis"
	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/metrics"
	"github.com/barrageopt/barrageopt/pkg/objectives/barrage"
	"github.com/barrageopt/barrageopt/pkg/seeding"
	"github.com/barrageopt/barrageopt/pkg/tides"
	"github.com/barrageopt/barrageopt/pkg/util"
)

// Outcome bundles everything a scenario run produces.
type Outcome struct {
	Args      *Args
	Series    *tides.Series
	Evaluator *barrage.Evaluator
	Result    *algorithms.Result
	Report    *analysis.Report
}

// Runner executes scenarios with optional instrumentation. The zero
// Runner is usable and runs without metrics or plots.
type Runner struct {
	// Recorder, when set, receives per-generation and per-run metrics.
	Recorder *metrics.Recorder
	// PlotPath, when set, receives an HTML scatter of the final front.
	PlotPath string
}

// Run executes a scenario with a zero Runner.
func Run(ctx context.Context, args *Args) (*Outcome, error) {
	var r Runner
	return r.Run(ctx, args)
}

// Run executes one scenario end to end: tide record, evaluator, search,
// report. The context cancels the search between generations.
func (r Runner) Run(ctx context.Context, args *Args) (*Outcome, error) {
	if args == nil {
		return nil, fmt.Errorf("runner needs scenario arguments")
	}
	args.SetDefaults()
	if err := args.Validate(); err != nil {
		return nil, err
	}
	logger := klog.FromContext(ctx).WithValues("scenario", args.Name)

	series, err := buildSeries(args.Tide)
	if err != nil {
		return nil, fmt.Errorf("scenario %q tide: %w", args.Name, err)
	}
	ev, err := barrage.NewEvaluator(args.Plant.toPlant(), series)
	if err != nil {
		return nil, fmt.Errorf("scenario %q evaluator: %w", args.Name, err)
	}
	logger.V(2).Info("Built tide record",
		"samples", series.Len(),
		"hours", series.Duration()/3600,
		"segments", ev.Segments(),
	)

	cfg := args.Algorithm.toConfig()
	cfg.Seed = args.Seed
	cfg.Segments = ev.Segments()
	cfg.SetDefaults()
	if !args.Seeding.Disabled {
		cfg.Initializer = seeding.Initializer(args.seedingConfig())
	}

	evaluate := framework.EvaluateFunc(ev.Evaluate)
	if r.Recorder != nil {
		evaluate = r.Recorder.InstrumentEvaluator(evaluate)
		cfg.OnGeneration = r.Recorder.ObserveGeneration
	}

	opt, err := algorithms.New(cfg, evaluate)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", args.Name, err)
	}
	result, err := opt.Optimize(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", args.Name, err)
	}
	if r.Recorder != nil {
		r.Recorder.ObserveResult(result)
	}

	report, err := analysis.Analyze(result.ParetoFront(), analysis.Config{
		Weights:     args.weights(),
		Evaluator:   ev,
		Feasibility: barrage.OperatingFeasibility(cfg.Heads, args.Analysis.MinDepth),
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %q analysis: %w", args.Name, err)
	}

	// A failed plot never fails the run; the result is already in hand.
	if r.PlotPath != "" {
		if err := util.PlotFront(result.FrontPoints(), nil, args.Name, r.PlotPath); err != nil {
			logger.Error(err, "Front plot failed", "path", r.PlotPath)
		} else {
			logger.V(1).Info("Wrote front plot", "path", r.PlotPath)
		}
	}

	logger.V(1).Info("Scenario finished",
		"run", result.RunID,
		"seed", result.Seed,
		"generations", result.Generations,
		"converged", result.Converged,
		"front", len(report.Solutions),
		"duration", result.Duration.Round(time.Millisecond),
	)
	return &Outcome{
		Args:      args,
		Series:    series,
		Evaluator: ev,
		Result:    result,
		Report:    report,
	}, nil
}
