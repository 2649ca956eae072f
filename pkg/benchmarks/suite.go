// Package benchmarks checks the optimiser against synthetic problems
// whose true Pareto fronts are known in closed form. Each problem speaks
// the same energy/cost dialect as the barrage evaluator, so a suite run
// exercises the full optimisation path.
package benchmarks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/util"
)

// trueFrontSamples is how finely the reference fronts are sampled when
// scoring and plotting.
const trueFrontSamples = 500

// Suite runs the optimiser across a set of benchmark problems and scores
// each run against the problem's true front.
type Suite struct {
	problems []framework.Problem
	config   algorithms.Config
	plotDir  string
}

// NewSuite creates a suite that runs every added problem with the given
// configuration. Segment count and head range come from each problem,
// not from the configuration.
func NewSuite(config algorithms.Config) *Suite {
	return &Suite{config: config}
}

// AddProblem appends a problem to the suite.
func (s *Suite) AddProblem(p framework.Problem) {
	s.problems = append(s.problems, p)
}

// AddStandardProblems adds the three yield problems at their standard
// thirty-gene size.
func (s *Suite) AddStandardProblems() {
	s.AddProblem(NewYieldFlat(30))
	s.AddProblem(NewYieldCurved(30))
	s.AddProblem(NewYieldBanded(30))
}

// WritePlotsTo makes Run render an HTML scatter of found versus true
// front for every problem into dir.
func (s *Suite) WritePlotsTo(dir string) {
	s.plotDir = dir
}

// Score summarises one benchmark run.
type Score struct {
	Problem     string
	IGD         float64
	Hypervolume float64
	ParetoSize  int
	Generations int
	Converged   bool
}

// Run optimises every problem in order. It stops at the first failing
// problem, returning the scores gathered so far alongside the error.
func (s *Suite) Run(ctx context.Context) ([]Score, error) {
	logger := klog.FromContext(ctx)
	scores := make([]Score, 0, len(s.problems))
	for _, problem := range s.problems {
		score, err := s.runProblem(ctx, problem)
		if err != nil {
			return scores, fmt.Errorf("benchmark %s: %w", problem.Name(), err)
		}
		logger.Info("benchmark finished",
			"problem", score.Problem,
			"igd", fmt.Sprintf("%.4f", score.IGD),
			"hypervolume", fmt.Sprintf("%.4f", score.Hypervolume),
			"front", score.ParetoSize,
			"generations", score.Generations)
		scores = append(scores, score)
	}
	return scores, nil
}

func (s *Suite) runProblem(ctx context.Context, problem framework.Problem) (Score, error) {
	cfg := s.config
	cfg.Segments = problem.Segments()
	cfg.Heads = problem.Heads()

	opt, err := algorithms.New(cfg, problem.Evaluate)
	if err != nil {
		return Score{}, err
	}
	result, err := opt.Optimize(ctx)
	if err != nil {
		return Score{}, err
	}

	found := result.FrontPoints()
	reference := problem.TrueFront(trueFrontSamples)
	igd, err := IGD(found, reference)
	if err != nil {
		return Score{}, err
	}

	if s.plotDir != "" {
		if err := s.plot(problem.Name(), found, reference); err != nil {
			klog.FromContext(ctx).Error(err, "plot failed", "problem", problem.Name())
		}
	}

	last := result.History[len(result.History)-1]
	return Score{
		Problem:     problem.Name(),
		IGD:         igd,
		Hypervolume: last.Hypervolume,
		ParetoSize:  len(found),
		Generations: result.Generations,
		Converged:   result.Converged,
	}, nil
}

func (s *Suite) plot(name string, found, reference []framework.Point) error {
	if err := os.MkdirAll(s.plotDir, 0o755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	path := filepath.Join(s.plotDir, name+".html")
	return util.PlotFront(found, reference, name+" benchmark", path)
}
