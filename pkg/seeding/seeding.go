// Package seeding builds heuristic initial populations. A deterministic
// sweep of head-threshold levels from aggressive to conservative hands
// the optimiser a spread first guess at the trade-off, and a uniform
// random remainder keeps early diversity up.
package seeding

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/framework"
)

// Sweep anchors, as fractions of the head-range span. An aggressive
// strategy starts generating late and discharges deep; a conservative
// one holds a narrow window low in the range.
const (
	aggressiveStart   = 0.9
	conservativeStart = 0.35
	aggressiveEnd     = 0.1
	conservativeEnd   = 0.3
)

// Config controls the blend of swept and random strategies. Zero fields
// get the standard blend from SetDefaults; a purely random population
// comes from skipping the initialiser altogether.
type Config struct {
	// SweepFraction is the share of the population built by the
	// threshold sweep; the remainder is drawn uniformly.
	SweepFraction float64
	// Jitter perturbs every swept gene by up to this fraction of the
	// head span, so members at the same sweep level still differ.
	Jitter float64
}

// SetDefaults fills zero fields with the standard blend.
func (c *Config) SetDefaults() {
	if c.SweepFraction == 0 {
		c.SweepFraction = 0.5
	}
	if c.Jitter == 0 {
		c.Jitter = 0.05
	}
}

// Validate rejects blends the initialiser cannot honour.
func (c Config) Validate() error {
	if math.IsNaN(c.SweepFraction) || c.SweepFraction < 0 || c.SweepFraction > 1 {
		return fmt.Errorf("sweep fraction must be in [0, 1], got %v", c.SweepFraction)
	}
	if math.IsNaN(c.Jitter) || c.Jitter < 0 || c.Jitter > 0.5 {
		return fmt.Errorf("jitter must be in [0, 0.5], got %v", c.Jitter)
	}
	return nil
}

// Initializer returns an initialisation function that mixes swept
// threshold strategies with uniform random ones. Defaults are applied
// here; validation happens on first use, where the optimiser can report
// it.
func Initializer(cfg Config) algorithms.InitFunc {
	cfg.SetDefaults()
	return func(rng *rand.Rand, segments int, heads framework.HeadRange, n int) ([]*algorithms.Individual, error) {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("seeding configuration: %w", err)
		}
		if rng == nil {
			return nil, fmt.Errorf("seeding needs a random source")
		}
		if n < 1 {
			return nil, fmt.Errorf("population size must be positive, got %d", n)
		}
		if segments < 1 {
			return nil, fmt.Errorf("strategies need at least one segment, got %d", segments)
		}

		swept := int(math.Round(cfg.SweepFraction * float64(n)))
		members := make([]*algorithms.Individual, 0, n)
		for i := 0; i < swept; i++ {
			t := 0.5
			if swept > 1 {
				t = float64(i) / float64(swept-1)
			}
			ind, err := sweptIndividual(rng, segments, heads, t, cfg.Jitter)
			if err != nil {
				return nil, err
			}
			members = append(members, ind)
		}

		rest, err := algorithms.UniformRandomInit(rng, segments, heads, n-swept)
		if err != nil {
			return nil, err
		}
		return append(members, rest...), nil
	}
}

// sweptIndividual builds one strategy at sweep position t, zero being
// the most aggressive level and one the most conservative.
func sweptIndividual(rng *rand.Rand, segments int, heads framework.HeadRange, t, jitter float64) (*algorithms.Individual, error) {
	start, end := sweepPair(t, heads)
	span := heads.Span()
	genes := make([]float64, 2*segments)
	for s := 0; s+1 < len(genes); s += 2 {
		genes[s] = heads.Clamp(start + (2*rng.Float64()-1)*jitter*span)
		genes[s+1] = heads.Clamp(end + (2*rng.Float64()-1)*jitter*span)
	}
	return algorithms.NewIndividualWithGenes(genes, heads)
}

// sweepPair maps a sweep position onto a (start, end) threshold pair.
// The generation window narrows as t grows but never closes.
func sweepPair(t float64, heads framework.HeadRange) (start, end float64) {
	span := heads.Span()
	start = heads.Min + span*(aggressiveStart+(conservativeStart-aggressiveStart)*t)
	end = heads.Min + span*(aggressiveEnd+(conservativeEnd-aggressiveEnd)*t)
	return start, end
}
