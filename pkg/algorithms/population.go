package algorithms

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

var (
	// ErrPopulationFull is returned by Add when the population is at
	// capacity.
	ErrPopulationFull = errors.New("population at capacity")
	// ErrIndexOutOfRange is returned by indexed access past the current
	// size.
	ErrIndexOutOfRange = errors.New("population index out of range")
)

// Population is an ordered, capacity-bounded collection of individuals.
type Population struct {
	capacity int
	members  []*Individual
}

// NewPopulation returns an empty population bounded by capacity.
func NewPopulation(capacity int) (*Population, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("population capacity must be positive, got %d", capacity)
	}
	return &Population{
		capacity: capacity,
		members:  make([]*Individual, 0, capacity),
	}, nil
}

// Add appends ind, failing once the population is at capacity.
func (p *Population) Add(ind *Individual) error {
	if ind == nil {
		return fmt.Errorf("cannot add a nil individual")
	}
	if len(p.members) >= p.capacity {
		return fmt.Errorf("add to population of %d: %w", p.capacity, ErrPopulationFull)
	}
	p.members = append(p.members, ind)
	return nil
}

// Remove deletes the member at index i, preserving order.
func (p *Population) Remove(i int) error {
	if i < 0 || i >= len(p.members) {
		return fmt.Errorf("remove index %d from %d members: %w", i, len(p.members), ErrIndexOutOfRange)
	}
	p.members = append(p.members[:i], p.members[i+1:]...)
	return nil
}

// Get returns the member at index i.
func (p *Population) Get(i int) (*Individual, error) {
	if i < 0 || i >= len(p.members) {
		return nil, fmt.Errorf("get index %d from %d members: %w", i, len(p.members), ErrIndexOutOfRange)
	}
	return p.members[i], nil
}

// Size returns the current member count.
func (p *Population) Size() int {
	return len(p.members)
}

// Capacity returns the bound on Size.
func (p *Population) Capacity() int {
	return p.capacity
}

// Members returns the members in insertion order. The slice is a copy, the
// individuals are not.
func (p *Population) Members() []*Individual {
	out := make([]*Individual, len(p.members))
	copy(out, p.members)
	return out
}

// Combine returns a new population whose capacity is the sum of both and
// whose members are deep clones of every member of p then other. Neither
// source is aliased.
func (p *Population) Combine(other *Population) (*Population, error) {
	if other == nil {
		return nil, fmt.Errorf("cannot combine with a nil population")
	}
	combined, err := NewPopulation(p.capacity + other.capacity)
	if err != nil {
		return nil, err
	}
	for _, ind := range p.members {
		if err := combined.Add(ind.Clone()); err != nil {
			return nil, err
		}
	}
	for _, ind := range other.members {
		if err := combined.Add(ind.Clone()); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

// Sort orders the members in place by less, stably.
func (p *Population) Sort(less func(a, b *Individual) bool) {
	sort.SliceStable(p.members, func(i, j int) bool {
		return less(p.members[i], p.members[j])
	})
}

// Stats aggregates both objectives over a population. Members carrying the
// invalid-cost sentinel are excluded from the cost aggregates; when every
// cost is invalid the cost fields hold the sentinel rather than a number
// computed from nothing.
type Stats struct {
	Size         int
	ValidCosts   int
	MinEnergy    float64
	MaxEnergy    float64
	MeanEnergy   float64
	StdDevEnergy float64
	MinUnitCost  float64
	MaxUnitCost  float64
	MeanUnitCost float64
}

// Statistics computes the aggregate objective values of the population.
func (p *Population) Statistics() Stats {
	s := Stats{
		Size:         len(p.members),
		MinUnitCost:  framework.InvalidCost,
		MaxUnitCost:  framework.InvalidCost,
		MeanUnitCost: framework.InvalidCost,
	}
	if len(p.members) == 0 {
		return s
	}

	energies := make([]float64, 0, len(p.members))
	costs := make([]float64, 0, len(p.members))
	for _, ind := range p.members {
		energies = append(energies, ind.energy)
		if ind.HasValidCost() {
			costs = append(costs, ind.unitCost)
		}
	}

	s.MinEnergy = floats.Min(energies)
	s.MaxEnergy = floats.Max(energies)
	s.MeanEnergy = stat.Mean(energies, nil)
	if len(energies) > 1 {
		s.StdDevEnergy = stat.StdDev(energies, nil)
	}

	s.ValidCosts = len(costs)
	if len(costs) > 0 {
		s.MinUnitCost = floats.Min(costs)
		s.MaxUnitCost = floats.Max(costs)
		s.MeanUnitCost = stat.Mean(costs, nil)
	}
	return s
}
