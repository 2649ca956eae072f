package algorithms

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// CrossoverType selects one of the crossover variants.
type CrossoverType string

const (
	// CrossoverSBX is simulated binary crossover with a configurable
	// distribution index.
	CrossoverSBX CrossoverType = "sbx"
	// CrossoverUniform swaps each gene between the children with 50%
	// probability.
	CrossoverUniform CrossoverType = "uniform"
	// CrossoverSegmentPair swaps whole (start, end) pairs atomically so
	// the two control parameters of a segment stay together.
	CrossoverSegmentPair CrossoverType = "segment-pair"
)

// ParseCrossoverType maps a configuration string onto a crossover variant.
func ParseCrossoverType(s string) (CrossoverType, error) {
	switch CrossoverType(s) {
	case CrossoverSBX, CrossoverUniform, CrossoverSegmentPair:
		return CrossoverType(s), nil
	}
	return "", fmt.Errorf("unknown crossover operator %q", s)
}

// MutationType selects one of the mutation variants.
type MutationType string

const (
	// MutationPolynomial is bounded polynomial perturbation with a
	// configurable distribution index.
	MutationPolynomial MutationType = "polynomial"
	// MutationGaussian adds clamped gaussian noise per gene.
	MutationGaussian MutationType = "gaussian"
	// MutationOperational perturbs whole (start, end) pairs: usually a
	// joint shift that keeps the pair's difference, sometimes a redraw of
	// the difference that keeps the pair's mean.
	MutationOperational MutationType = "operational"
)

// ParseMutationType maps a configuration string onto a mutation variant.
func ParseMutationType(s string) (MutationType, error) {
	switch MutationType(s) {
	case MutationPolynomial, MutationGaussian, MutationOperational:
		return MutationType(s), nil
	}
	return "", fmt.Errorf("unknown mutation operator %q", s)
}

// OperatorConfig tunes the variation operators.
type OperatorConfig struct {
	// CrossoverEta is the SBX distribution index; larger keeps children
	// closer to their parents.
	CrossoverEta float64
	// MutationEta is the polynomial-mutation distribution index.
	MutationEta float64
	// GaussianSigma is the standard deviation of gaussian mutation, in
	// metres.
	GaussianSigma float64
	// OperationalShift bounds the joint-shift branch of operational
	// mutation, as a fraction of the head span.
	OperationalShift float64
}

// SetDefaults fills zero fields with the standard tuning.
func (c *OperatorConfig) SetDefaults() {
	if c.CrossoverEta == 0 {
		c.CrossoverEta = 15
	}
	if c.MutationEta == 0 {
		c.MutationEta = 20
	}
	if c.GaussianSigma == 0 {
		c.GaussianSigma = 0.25
	}
	if c.OperationalShift == 0 {
		c.OperationalShift = 0.1
	}
}

// Validate rejects non-positive tunings.
func (c OperatorConfig) Validate() error {
	if c.CrossoverEta <= 0 {
		return fmt.Errorf("crossover distribution index must be positive, got %v", c.CrossoverEta)
	}
	if c.MutationEta <= 0 {
		return fmt.Errorf("mutation distribution index must be positive, got %v", c.MutationEta)
	}
	if c.GaussianSigma <= 0 {
		return fmt.Errorf("gaussian sigma must be positive, got %v", c.GaussianSigma)
	}
	if c.OperationalShift <= 0 || c.OperationalShift > 1 {
		return fmt.Errorf("operational shift must be in (0, 1], got %v", c.OperationalShift)
	}
	return nil
}

// Operators applies crossover and mutation, drawing every random number
// from one injected source so runs are reproducible.
type Operators struct {
	heads framework.HeadRange
	cfg   OperatorConfig
	rng   *rand.Rand
	noise distuv.Normal
}

// NewOperators validates the tuning and binds the operators to rng.
func NewOperators(heads framework.HeadRange, cfg OperatorConfig, rng *rand.Rand) (*Operators, error) {
	if rng == nil {
		return nil, fmt.Errorf("operators need a random source")
	}
	if err := heads.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Operators{
		heads: heads,
		cfg:   cfg,
		rng:   rng,
		noise: distuv.Normal{Mu: 0, Sigma: cfg.GaussianSigma, Src: rng},
	}, nil
}

// CreateOffspring pairs the parents in order, crosses each pair, mutates
// each child independently, and returns the children, exactly as many as
// there were parents. The parent list must be non-empty and even, the
// probabilities in [0, 1], and the operator names known; violations fail
// before any child is produced. Parents are never modified.
func (o *Operators) CreateOffspring(parents []*Individual, pc, pm float64, ct CrossoverType, mt MutationType) ([]*Individual, error) {
	if len(parents) == 0 {
		return nil, fmt.Errorf("offspring need at least one pair of parents")
	}
	if len(parents)%2 != 0 {
		return nil, fmt.Errorf("parent count must be even, got %d", len(parents))
	}
	for i, p := range parents {
		if p == nil {
			return nil, fmt.Errorf("parent %d is nil", i)
		}
	}
	if err := validateProbability("crossover", pc); err != nil {
		return nil, err
	}
	if err := validateProbability("mutation", pm); err != nil {
		return nil, err
	}
	cross, err := o.crossover(ct)
	if err != nil {
		return nil, err
	}
	mutate, err := o.mutation(mt)
	if err != nil {
		return nil, err
	}

	children := make([]*Individual, 0, len(parents))
	for i := 0; i < len(parents); i += 2 {
		c1, c2 := cross(parents[i], parents[i+1], pc)
		mutate(c1, pm)
		mutate(c2, pm)
		children = append(children, c1, c2)
	}
	return children, nil
}

func validateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%s probability must be in [0, 1], got %v", name, p)
	}
	return nil
}

func (o *Operators) crossover(ct CrossoverType) (func(p1, p2 *Individual, pc float64) (*Individual, *Individual), error) {
	switch ct {
	case CrossoverSBX:
		return o.sbxCrossover, nil
	case CrossoverUniform:
		return o.uniformCrossover, nil
	case CrossoverSegmentPair:
		return o.segmentPairCrossover, nil
	}
	return nil, fmt.Errorf("unknown crossover operator %q", ct)
}

func (o *Operators) mutation(mt MutationType) (func(ind *Individual, pm float64), error) {
	switch mt {
	case MutationPolynomial:
		return o.polynomialMutate, nil
	case MutationGaussian:
		return o.gaussianMutate, nil
	case MutationOperational:
		return o.operationalMutate, nil
	}
	return nil, fmt.Errorf("unknown mutation operator %q", mt)
}

// childOf starts a child as an unevaluated copy of p's genes.
func childOf(p *Individual) *Individual {
	c := p.Clone()
	c.energy = 0
	c.unitCost = framework.InvalidCost
	c.rank = Unranked
	c.distance = 0
	return c
}

// sbxCrossover blends each gene of the pair with the SBX spreading factor.
// Each gene recombines independently with 50% probability; when the outer
// probability check fails the children are plain copies of the parents.
func (o *Operators) sbxCrossover(p1, p2 *Individual, pc float64) (*Individual, *Individual) {
	c1, c2 := childOf(p1), childOf(p2)
	if o.rng.Float64() >= pc {
		return c1, c2
	}
	for i := range c1.genes {
		if o.rng.Float64() >= 0.5 {
			continue
		}
		x1, x2 := p1.genes[i], p2.genes[i]
		beta := o.spreadFactor()
		c1.genes[i] = o.heads.Clamp(0.5 * ((1+beta)*x1 + (1-beta)*x2))
		c2.genes[i] = o.heads.Clamp(0.5 * ((1-beta)*x1 + (1+beta)*x2))
	}
	return c1, c2
}

// spreadFactor draws the SBX spreading factor for the configured
// distribution index.
func (o *Operators) spreadFactor() float64 {
	u := o.rng.Float64()
	if u <= 0.5 {
		return math.Pow(2*u, 1/(o.cfg.CrossoverEta+1))
	}
	return math.Pow(1/(2*(1-u)), 1/(o.cfg.CrossoverEta+1))
}

func (o *Operators) uniformCrossover(p1, p2 *Individual, pc float64) (*Individual, *Individual) {
	c1, c2 := childOf(p1), childOf(p2)
	if o.rng.Float64() >= pc {
		return c1, c2
	}
	for i := range c1.genes {
		if o.rng.Float64() < 0.5 {
			c1.genes[i], c2.genes[i] = c2.genes[i], c1.genes[i]
		}
	}
	return c1, c2
}

func (o *Operators) segmentPairCrossover(p1, p2 *Individual, pc float64) (*Individual, *Individual) {
	c1, c2 := childOf(p1), childOf(p2)
	if o.rng.Float64() >= pc {
		return c1, c2
	}
	for s := 0; s < c1.Segments(); s++ {
		if o.rng.Float64() < 0.5 {
			i := 2 * s
			c1.genes[i], c2.genes[i] = c2.genes[i], c1.genes[i]
			c1.genes[i+1], c2.genes[i+1] = c2.genes[i+1], c1.genes[i+1]
		}
	}
	return c1, c2
}

func (o *Operators) polynomialMutate(ind *Individual, pm float64) {
	span := o.heads.Span()
	for i := range ind.genes {
		if o.rng.Float64() >= pm {
			continue
		}
		u := o.rng.Float64()
		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(o.cfg.MutationEta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(o.cfg.MutationEta+1))
		}
		ind.genes[i] = o.heads.Clamp(ind.genes[i] + delta*span)
	}
}

func (o *Operators) gaussianMutate(ind *Individual, pm float64) {
	for i := range ind.genes {
		if o.rng.Float64() < pm {
			ind.genes[i] = o.heads.Clamp(ind.genes[i] + o.noise.Rand())
		}
	}
}

// operationalMutate works on whole (start, end) pairs. 70% of triggered
// segments shift both heads by one offset, keeping the generating window's
// depth; the rest redraw the window depth around the pair's midpoint,
// keeping its centre. Clamping at the range boundary may still move either
// quantity.
func (o *Operators) operationalMutate(ind *Individual, pm float64) {
	span := o.heads.Span()
	for s := 0; s < ind.Segments(); s++ {
		if o.rng.Float64() >= pm {
			continue
		}
		i := 2 * s
		start, end := ind.genes[i], ind.genes[i+1]
		if o.rng.Float64() < 0.7 {
			shift := (2*o.rng.Float64() - 1) * o.cfg.OperationalShift * span
			ind.genes[i] = o.heads.Clamp(start + shift)
			ind.genes[i+1] = o.heads.Clamp(end + shift)
			continue
		}
		mid := (start + end) / 2
		halfMax := math.Min(mid-o.heads.Min, o.heads.Max-mid)
		half := o.rng.Float64() * halfMax
		if start >= end {
			ind.genes[i] = o.heads.Clamp(mid + half)
			ind.genes[i+1] = o.heads.Clamp(mid - half)
		} else {
			ind.genes[i] = o.heads.Clamp(mid - half)
			ind.genes[i+1] = o.heads.Clamp(mid + half)
		}
	}
}
