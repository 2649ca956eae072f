package algorithms

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// State names the phase an optimisation run is in.
type State string

const (
	StateUninitialised     State = "UNINITIALISED"
	StateEvaluatingInitial State = "EVALUATING_INITIAL"
	StateEvolving          State = "EVOLVING"
	StateMaxGenerations    State = "MAX_GENERATIONS_REACHED"
	StateConverged         State = "CONVERGED"
)

// InitFunc builds the initial population members. Implementations must
// draw randomness only from rng so runs stay reproducible.
type InitFunc func(rng *rand.Rand, segments int, heads framework.HeadRange, n int) ([]*Individual, error)

// Config holds every parameter of a run. Zero fields get the standard
// defaults from SetDefaults; Segments has no default because the tide
// series fixes it.
type Config struct {
	// PopulationSize is the number of individuals per generation, even
	// and at least 4.
	PopulationSize int
	// MaxGenerations caps the generational loop.
	MaxGenerations int
	// CrossoverProbability gates each parent pair's recombination.
	CrossoverProbability float64
	// MutationProbability gates each gene's (or pair's) perturbation.
	MutationProbability float64
	// Crossover and Mutation choose the variation operators.
	Crossover CrossoverType
	Mutation  MutationType
	// Operator tunes the chosen operators.
	Operator OperatorConfig
	// Epsilon is the relative stagnation threshold of the convergence
	// tracker.
	Epsilon float64
	// StagnationWindow is how many generations back the tracker compares
	// against.
	StagnationWindow int
	// Segments is the number of (start, end) head pairs per strategy.
	Segments int
	// Heads is the admissible head interval.
	Heads framework.HeadRange
	// Seed feeds the run's random source; 0 seeds from the wall clock.
	Seed uint64
	// Workers bounds the evaluation fan-out; 0 uses every CPU.
	Workers int
	// Initializer seeds the first generation; nil draws genes uniformly.
	Initializer InitFunc
	// OnGeneration, when set, receives every generation record as it is
	// appended to the history.
	OnGeneration func(GenerationRecord)
}

// SetDefaults fills zero fields with the standard tuning.
func (c *Config) SetDefaults() {
	if c.PopulationSize == 0 {
		c.PopulationSize = 100
	}
	if c.MaxGenerations == 0 {
		c.MaxGenerations = 200
	}
	if c.CrossoverProbability == 0 {
		c.CrossoverProbability = 0.9
	}
	if c.MutationProbability == 0 {
		c.MutationProbability = 0.1
	}
	if c.Crossover == "" {
		c.Crossover = CrossoverSBX
	}
	if c.Mutation == "" {
		c.Mutation = MutationPolynomial
	}
	c.Operator.SetDefaults()
	if c.Epsilon == 0 {
		c.Epsilon = 1e-3
	}
	if c.StagnationWindow == 0 {
		c.StagnationWindow = 25
	}
	if c.Heads == (framework.HeadRange{}) {
		c.Heads = framework.DefaultHeadRange
	}
}

// Validate rejects configurations the orchestrator cannot run.
func (c Config) Validate() error {
	if c.PopulationSize < 4 {
		return fmt.Errorf("population size must be at least 4, got %d", c.PopulationSize)
	}
	if c.PopulationSize%2 != 0 {
		return fmt.Errorf("population size must be even for pairing, got %d", c.PopulationSize)
	}
	if c.MaxGenerations < 1 {
		return fmt.Errorf("max generations must be at least 1, got %d", c.MaxGenerations)
	}
	if err := validateProbability("crossover", c.CrossoverProbability); err != nil {
		return err
	}
	if err := validateProbability("mutation", c.MutationProbability); err != nil {
		return err
	}
	if _, err := ParseCrossoverType(string(c.Crossover)); err != nil {
		return err
	}
	if _, err := ParseMutationType(string(c.Mutation)); err != nil {
		return err
	}
	if err := c.Operator.Validate(); err != nil {
		return err
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("convergence threshold must be non-negative, got %v", c.Epsilon)
	}
	if c.StagnationWindow < 1 {
		return fmt.Errorf("stagnation window must be at least 1, got %d", c.StagnationWindow)
	}
	if c.Segments < 1 {
		return fmt.Errorf("segment count must be at least 1, got %d", c.Segments)
	}
	if err := c.Heads.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("worker count must be non-negative, got %d", c.Workers)
	}
	return nil
}

// GenerationRecord is one generation's entry in the run history.
type GenerationRecord struct {
	Generation  int
	Population  Stats
	Selection   SelectionStats
	ParetoSize  int
	Hypervolume float64
	Spacing     float64
}

// Result is the immutable outcome of one run. Final and the individuals
// reachable from it are owned by the result; treat them as read-only.
type Result struct {
	RunID       string
	Final       *Population
	History     []GenerationRecord
	Generations int
	Duration    time.Duration
	Converged   bool
	Reason      string
	State       State
	Seed        uint64
}

// ParetoFront recomputes front 0 of the final population on demand and
// returns clones of its members, best-energy last. Rank metadata inside
// the final population is refreshed as a side effect.
func (r *Result) ParetoFront() []*Individual {
	front := ParetoFront(r.Final)
	out := make([]*Individual, len(front))
	for i, ind := range front {
		out[i] = ind.Clone()
	}
	return out
}

// FrontPoints maps the Pareto front into objective space.
func (r *Result) FrontPoints() []framework.Point {
	front := ParetoFront(r.Final)
	points := make([]framework.Point, len(front))
	for i, ind := range front {
		points[i] = ind.Point()
	}
	return points
}

// Optimizer owns one NSGA-II run over a black-box evaluator.
type Optimizer struct {
	cfg     Config
	eval    framework.EvaluateFunc
	rng     *rand.Rand
	ops     *Operators
	tracker *ConvergenceTracker
	state   State
}

// New builds a validated optimiser around the evaluator. Defaults are
// applied before validation, so only Segments and the evaluator are truly
// required.
func New(cfg Config, eval framework.EvaluateFunc) (*Optimizer, error) {
	if eval == nil {
		return nil, fmt.Errorf("optimizer needs an evaluator")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	ops, err := NewOperators(cfg.Heads, cfg.Operator, rng)
	if err != nil {
		return nil, err
	}
	tracker, err := NewConvergenceTracker(cfg.Epsilon, cfg.StagnationWindow)
	if err != nil {
		return nil, err
	}
	return &Optimizer{
		cfg:     cfg,
		eval:    eval,
		rng:     rng,
		ops:     ops,
		tracker: tracker,
		state:   StateUninitialised,
	}, nil
}

// State returns the run's current phase.
func (o *Optimizer) State() State {
	return o.state
}

// Config returns the effective configuration, defaults and seed resolved.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Optimize runs the generational loop to a terminal state and returns the
// result. The context is honoured once per generation boundary, so
// cancellation never exposes a half-built generation.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := klog.FromContext(ctx).WithValues("run", runID, "seed", o.cfg.Seed)

	start := time.Now()
	o.state = StateEvaluatingInitial
	logger.Info("Starting NSGA-II run",
		"populationSize", o.cfg.PopulationSize,
		"maxGenerations", o.cfg.MaxGenerations,
		"segments", o.cfg.Segments,
		"crossover", o.cfg.Crossover,
		"mutation", o.cfg.Mutation,
		"workers", o.workers(),
	)

	pop, err := o.initialPopulation()
	if err != nil {
		o.state = StateUninitialised
		return nil, err
	}
	if err := o.evaluateAll(pop.Members()); err != nil {
		return nil, err
	}

	history := make([]GenerationRecord, 0, o.cfg.MaxGenerations+1)
	front := ParetoFront(pop)
	snap := o.tracker.Observe(front, 0)
	baseline := o.record(0, pop, SelectionStats{TruncatedFront: -1}, front, snap)
	history = append(history, baseline)
	o.emit(baseline)
	logger.V(2).Info("Initial population evaluated",
		"paretoSize", snap.ParetoSize,
		"maxEnergy", snap.MaxEnergy,
		"minUnitCost", snap.MinUnitCost,
	)

	o.state = StateEvolving
	gen := 0
	for gen < o.cfg.MaxGenerations && !o.tracker.Converged() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("optimisation cancelled at generation %d: %w", gen, ctx.Err())
		default:
		}

		parents, err := SelectParents(pop, o.cfg.PopulationSize, o.rng)
		if err != nil {
			return nil, err
		}
		offspring, err := o.ops.CreateOffspring(parents,
			o.cfg.CrossoverProbability, o.cfg.MutationProbability,
			o.cfg.Crossover, o.cfg.Mutation)
		if err != nil {
			return nil, err
		}
		if err := o.evaluateAll(offspring); err != nil {
			return nil, err
		}
		offPop, err := populationOf(offspring)
		if err != nil {
			return nil, err
		}
		combined, err := CombinePopulations(pop, offPop)
		if err != nil {
			return nil, err
		}
		next, selStats, err := SelectNextGeneration(combined, o.cfg.PopulationSize)
		if err != nil {
			return nil, err
		}
		pop = next
		gen++

		front = ParetoFront(pop)
		snap = o.tracker.Observe(front, gen)
		rec := o.record(gen, pop, selStats, front, snap)
		history = append(history, rec)
		o.emit(rec)

		if gen <= 3 || gen%10 == 0 {
			logger.V(2).Info("Generation complete",
				"generation", gen,
				"paretoSize", snap.ParetoSize,
				"maxEnergy", snap.MaxEnergy,
				"minUnitCost", snap.MinUnitCost,
				"hypervolume", snap.Hypervolume,
			)
		}
	}

	converged := o.tracker.Converged()
	if converged {
		o.state = StateConverged
	} else {
		o.state = StateMaxGenerations
	}
	duration := time.Since(start)
	logger.Info("Run finished",
		"state", string(o.state),
		"generations", gen,
		"duration", duration,
		"converged", converged,
		"reason", o.tracker.Reason(),
	)

	return &Result{
		RunID:       runID,
		Final:       pop,
		History:     history,
		Generations: gen,
		Duration:    duration,
		Converged:   converged,
		Reason:      o.tracker.Reason(),
		State:       o.state,
		Seed:        o.cfg.Seed,
	}, nil
}

// evaluateAll scores individuals through the worker pool. Each individual
// is written by exactly one goroutine, so the only synchronisation needed
// is the pool's own join.
func (o *Optimizer) evaluateAll(inds []*Individual) error {
	p := pool.New().WithMaxGoroutines(o.workers()).WithErrors()
	for _, ind := range inds {
		p.Go(func() error {
			energy, unitCost := o.eval(ind.Genes())
			if err := ind.SetObjectives(energy, unitCost); err != nil {
				return fmt.Errorf("evaluator broke the objective contract: %w", err)
			}
			return nil
		})
	}
	return p.Wait()
}

func (o *Optimizer) workers() int {
	if o.cfg.Workers > 0 {
		return o.cfg.Workers
	}
	return runtime.NumCPU()
}

func (o *Optimizer) initialPopulation() (*Population, error) {
	init := o.cfg.Initializer
	if init == nil {
		init = UniformRandomInit
	}
	members, err := init(o.rng, o.cfg.Segments, o.cfg.Heads, o.cfg.PopulationSize)
	if err != nil {
		return nil, fmt.Errorf("initialising population: %w", err)
	}
	if len(members) != o.cfg.PopulationSize {
		return nil, fmt.Errorf("initialiser produced %d members, want %d", len(members), o.cfg.PopulationSize)
	}
	return populationOf(members)
}

func (o *Optimizer) record(gen int, pop *Population, sel SelectionStats, front []*Individual, snap Snapshot) GenerationRecord {
	return GenerationRecord{
		Generation:  gen,
		Population:  pop.Statistics(),
		Selection:   sel,
		ParetoSize:  len(front),
		Hypervolume: snap.Hypervolume,
		Spacing:     Spacing(front),
	}
}

func (o *Optimizer) emit(rec GenerationRecord) {
	if o.cfg.OnGeneration != nil {
		o.cfg.OnGeneration(rec)
	}
}

// populationOf wraps the individuals in a population sized to fit exactly.
func populationOf(members []*Individual) (*Population, error) {
	pop, err := NewPopulation(len(members))
	if err != nil {
		return nil, err
	}
	for _, ind := range members {
		if err := pop.Add(ind); err != nil {
			return nil, err
		}
	}
	return pop, nil
}

// UniformRandomInit fills the initial population with genes drawn
// uniformly from the head range.
func UniformRandomInit(rng *rand.Rand, segments int, heads framework.HeadRange, n int) ([]*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("initialisation needs a random source")
	}
	members := make([]*Individual, 0, n)
	for i := 0; i < n; i++ {
		ind, err := NewIndividual(segments, heads)
		if err != nil {
			return nil, err
		}
		for g := range ind.genes {
			ind.genes[g] = heads.Min + rng.Float64()*heads.Span()
		}
		members = append(members, ind)
	}
	return members, nil
}
