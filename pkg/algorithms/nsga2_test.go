package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// rampEvaluator is a pure stand-in plant model: each segment yields energy
// proportional to how far its start head sits above its end head, and the
// unit cost grows with the square of the yield, so cheap low-yield and
// expensive high-yield strategies trade off against each other. Strategies
// producing nothing get the invalid-cost sentinel.
func rampEvaluator(genes []float64) (float64, float64) {
	energy := 0.0
	for s := 0; s+1 < len(genes); s += 2 {
		if d := genes[s] - genes[s+1]; d > 0 {
			energy += d * 100
		}
	}
	if energy == 0 {
		return 0, framework.InvalidCost
	}
	return energy, 10 + energy*energy/1000
}

func TestNewValidatesConfiguration(t *testing.T) {
	valid := Config{Segments: 2, Seed: 1}
	if _, err := New(valid, rampEvaluator); err != nil {
		t.Fatalf("New with a minimal valid config: %v", err)
	}
	if _, err := New(valid, nil); err == nil {
		t.Error("expected error for a nil evaluator")
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing segments", func(c *Config) { c.Segments = 0 }},
		{"odd population", func(c *Config) { c.PopulationSize = 7 }},
		{"tiny population", func(c *Config) { c.PopulationSize = 2 }},
		{"negative mutation probability", func(c *Config) { c.MutationProbability = -0.1 }},
		{"crossover probability above 1", func(c *Config) { c.CrossoverProbability = 1.5 }},
		{"unknown crossover", func(c *Config) { c.Crossover = "two-point" }},
		{"unknown mutation", func(c *Config) { c.Mutation = "bitflip" }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1e-3 }},
		{"negative stagnation window", func(c *Config) { c.StagnationWindow = -5 }},
		{"inverted head range", func(c *Config) { c.Heads = framework.HeadRange{Min: 3, Max: 1} }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if _, err := New(cfg, rampEvaluator); err == nil {
				t.Error("expected a configuration error, got none")
			}
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	opt, err := New(Config{Segments: 2, Seed: 9}, rampEvaluator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := opt.Config()
	if cfg.PopulationSize != 100 {
		t.Errorf("PopulationSize = %d, want 100", cfg.PopulationSize)
	}
	if cfg.MaxGenerations != 200 {
		t.Errorf("MaxGenerations = %d, want 200", cfg.MaxGenerations)
	}
	if cfg.CrossoverProbability != 0.9 || cfg.MutationProbability != 0.1 {
		t.Errorf("probabilities = (%v, %v), want (0.9, 0.1)",
			cfg.CrossoverProbability, cfg.MutationProbability)
	}
	if cfg.Crossover != CrossoverSBX || cfg.Mutation != MutationPolynomial {
		t.Errorf("operators = (%s, %s), want (sbx, polynomial)", cfg.Crossover, cfg.Mutation)
	}
	if cfg.Epsilon != 1e-3 || cfg.StagnationWindow != 25 {
		t.Errorf("stagnation tuning = (%v, %d), want (1e-3, 25)", cfg.Epsilon, cfg.StagnationWindow)
	}
	if cfg.Heads != framework.DefaultHeadRange {
		t.Errorf("Heads = %+v, want the default range", cfg.Heads)
	}
	if cfg.Seed != 9 {
		t.Errorf("Seed = %d, want the explicit seed kept", cfg.Seed)
	}
	if got := opt.State(); got != StateUninitialised {
		t.Errorf("State() = %s before running, want %s", got, StateUninitialised)
	}
}

func TestOptimizeRunsToTerminalState(t *testing.T) {
	opt, err := New(Config{
		PopulationSize: 20,
		MaxGenerations: 30,
		Segments:       2,
		Seed:           7,
		Workers:        2,
	}, rampEvaluator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := opt.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.RunID == "" {
		t.Error("result carries no run ID")
	}
	if result.Seed != 7 {
		t.Errorf("result seed = %d, want 7", result.Seed)
	}
	if result.State != StateConverged && result.State != StateMaxGenerations {
		t.Errorf("terminal state = %s", result.State)
	}
	if result.Converged != (result.State == StateConverged) {
		t.Errorf("Converged = %v disagrees with state %s", result.Converged, result.State)
	}
	if opt.State() != result.State {
		t.Errorf("optimizer state %s differs from result state %s", opt.State(), result.State)
	}
	if result.Generations < 1 || result.Generations > 30 {
		t.Errorf("Generations = %d, want within [1, 30]", result.Generations)
	}
	if got, want := len(result.History), result.Generations+1; got != want {
		t.Errorf("history length = %d, want %d (baseline plus one per generation)", got, want)
	}
	if result.History[0].Generation != 0 {
		t.Errorf("first history entry is generation %d, want 0", result.History[0].Generation)
	}
	if result.History[0].Selection.TruncatedFront != -1 {
		t.Error("baseline entry should carry no truncation")
	}
	if last := result.History[len(result.History)-1]; last.Generation != result.Generations {
		t.Errorf("last history entry is generation %d, want %d", last.Generation, result.Generations)
	}
	if result.Final.Size() != 20 {
		t.Errorf("final population size = %d, want 20", result.Final.Size())
	}

	// Elitism: the best strategy can never be lost between generations.
	first, lastRec := result.History[0], result.History[len(result.History)-1]
	if lastRec.Population.MaxEnergy < first.Population.MaxEnergy {
		t.Errorf("max energy fell from %v to %v across the run",
			first.Population.MaxEnergy, lastRec.Population.MaxEnergy)
	}

	front := result.ParetoFront()
	if len(front) == 0 {
		t.Fatal("empty Pareto front from a completed run")
	}
	finalMembers := result.Final.Members()
	for i, a := range front {
		if a.Rank() != 0 {
			t.Errorf("front member %d has rank %d, want 0", i, a.Rank())
		}
		if a.Energy() < 0 {
			t.Errorf("front member %d has negative energy %v", i, a.Energy())
		}
		if a.HasValidCost() && a.UnitCost() < 0 {
			t.Errorf("front member %d has negative unit cost %v", i, a.UnitCost())
		}
		for _, m := range finalMembers {
			if a == m {
				t.Fatalf("front member %d aliases the final population", i)
			}
		}
		for j, b := range front {
			if i != j && Dominates(a, b) {
				t.Errorf("front member %d dominates front member %d", i, j)
			}
		}
	}
}

func TestOptimizeStopsAtMaxGenerations(t *testing.T) {
	// The stagnation window never fills within five generations, so the run
	// has to go the full distance.
	opt, err := New(Config{
		PopulationSize:   20,
		MaxGenerations:   5,
		StagnationWindow: 25,
		Segments:         2,
		Seed:             13,
	}, rampEvaluator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := opt.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.State != StateMaxGenerations {
		t.Errorf("state = %s, want %s", result.State, StateMaxGenerations)
	}
	if result.Converged {
		t.Error("run flagged converged before the window could fill")
	}
	if result.Generations != 5 {
		t.Errorf("Generations = %d, want all 5", result.Generations)
	}
	if result.Reason != "" {
		t.Errorf("Reason = %q, want empty without convergence", result.Reason)
	}
}

func TestOptimizeConvergesOnStagnantFront(t *testing.T) {
	flat := func(genes []float64) (float64, float64) { return 10, 5 }
	opt, err := New(Config{
		PopulationSize:   8,
		MaxGenerations:   50,
		StagnationWindow: 3,
		Segments:         1,
		Seed:             3,
	}, flat)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := opt.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.State != StateConverged || !result.Converged {
		t.Fatalf("state = %s, want %s", result.State, StateConverged)
	}
	if result.Generations != 3 {
		t.Errorf("Generations = %d, want convergence as soon as the window fills", result.Generations)
	}
	if result.Reason != "hypervolume stagnated" {
		t.Errorf("Reason = %q, want the hypervolume criterion", result.Reason)
	}
}

func TestOptimizeIsReproducible(t *testing.T) {
	run := func() *Result {
		opt, err := New(Config{
			PopulationSize: 12,
			MaxGenerations: 12,
			Segments:       2,
			Seed:           42,
			Workers:        3,
		}, rampEvaluator)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		result, err := opt.Optimize(context.Background())
		if err != nil {
			t.Fatalf("Optimize: %v", err)
		}
		return result
	}

	r1, r2 := run(), run()
	if diff := cmp.Diff(r1.History, r2.History); diff != "" {
		t.Errorf("same seed produced different histories (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(r1.FrontPoints(), r2.FrontPoints()); diff != "" {
		t.Errorf("same seed produced different fronts (-first +second):\n%s", diff)
	}
}

func TestOptimizeHonoursCancelledContext(t *testing.T) {
	opt, err := New(Config{
		PopulationSize: 8,
		MaxGenerations: 100,
		Segments:       1,
		Seed:           5,
	}, rampEvaluator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := opt.Optimize(ctx)
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
	if result != nil {
		t.Error("cancelled run should return no result")
	}
}

func TestOptimizeRejectsContractBreakingEvaluator(t *testing.T) {
	negative := func(genes []float64) (float64, float64) { return -5, 10 }
	opt, err := New(Config{
		PopulationSize: 8,
		MaxGenerations: 10,
		Segments:       1,
		Seed:           2,
	}, negative)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := opt.Optimize(context.Background()); err == nil {
		t.Fatal("expected an error from a negative-energy evaluator")
	}
}

func TestOnGenerationSeesEveryRecord(t *testing.T) {
	var seen []int
	opt, err := New(Config{
		PopulationSize:   8,
		MaxGenerations:   6,
		StagnationWindow: 25,
		Segments:         1,
		Seed:             21,
		OnGeneration: func(rec GenerationRecord) {
			seen = append(seen, rec.Generation)
		},
	}, rampEvaluator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := opt.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(seen) != len(result.History) {
		t.Fatalf("callback fired %d times, want %d", len(seen), len(result.History))
	}
	for i, gen := range seen {
		if gen != i {
			t.Errorf("callback %d saw generation %d, want in-order delivery", i, gen)
		}
	}
}

func TestUniformRandomInitStaysInRange(t *testing.T) {
	heads := framework.HeadRange{Min: 1, Max: 2}
	members, err := UniformRandomInit(rand.New(rand.NewSource(17)), 3, heads, 50)
	if err != nil {
		t.Fatalf("UniformRandomInit: %v", err)
	}
	if len(members) != 50 {
		t.Fatalf("got %d members, want 50", len(members))
	}
	varied := false
	for _, ind := range members {
		for i, g := range ind.Genes() {
			if !heads.Contains(g) {
				t.Fatalf("gene %d = %v escaped [%v, %v]", i, g, heads.Min, heads.Max)
			}
		}
		if !ind.equalGenesWithin(members[0], 0) {
			varied = true
		}
	}
	if !varied {
		t.Error("every initial member carries identical genes")
	}

	if _, err := UniformRandomInit(nil, 3, heads, 10); err == nil {
		t.Error("expected error for a nil random source")
	}
}
