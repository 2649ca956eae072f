// Package algorithms implements the NSGA-II core: individuals and
// populations, Pareto dominance and non-dominated sorting, crowding
// distance, the variation operators, environmental selection, convergence
// tracking, and the generational orchestrator.
package algorithms

import (
	"fmt"
	"math"
	"strings"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// Unranked marks an individual that has not been through non-dominated
// sorting yet.
const Unranked = -1

// Individual is one candidate operating strategy: a vector of head
// set-points in metres, read in pairs as (start, end) per half-tide
// segment, plus its two objective scores and search metadata. The gene
// vector is owned by the individual; callers change it only through the
// validated setters, and operators derive children by clone-then-modify.
type Individual struct {
	genes    []float64
	heads    framework.HeadRange
	energy   float64
	unitCost float64
	rank     int
	distance float64
}

// NewIndividual returns an individual for the given number of half-tide
// segments with every gene at the bottom of the head range, which is the
// all-off strategy under the default range.
func NewIndividual(segments int, heads framework.HeadRange) (*Individual, error) {
	if segments < 1 {
		return nil, fmt.Errorf("individual needs at least one segment, got %d", segments)
	}
	if err := heads.Validate(); err != nil {
		return nil, err
	}
	genes := make([]float64, 2*segments)
	for i := range genes {
		genes[i] = heads.Min
	}
	return &Individual{
		genes:    genes,
		heads:    heads,
		unitCost: framework.InvalidCost,
		rank:     Unranked,
	}, nil
}

// NewIndividualWithGenes builds an individual around a copy of genes. The
// vector must hold an even, positive number of values, all inside heads.
func NewIndividualWithGenes(genes []float64, heads framework.HeadRange) (*Individual, error) {
	if len(genes) == 0 || len(genes)%2 != 0 {
		return nil, fmt.Errorf("gene vector must have an even, positive length, got %d", len(genes))
	}
	if err := heads.Validate(); err != nil {
		return nil, err
	}
	for i, g := range genes {
		if !heads.Contains(g) {
			return nil, fmt.Errorf("gene %d = %v outside head range [%v, %v]", i, g, heads.Min, heads.Max)
		}
	}
	copied := make([]float64, len(genes))
	copy(copied, genes)
	return &Individual{
		genes:    copied,
		heads:    heads,
		unitCost: framework.InvalidCost,
		rank:     Unranked,
	}, nil
}

// Segments returns the number of (start, end) pairs.
func (ind *Individual) Segments() int {
	return len(ind.genes) / 2
}

// Heads returns the admissible head interval the genes live in.
func (ind *Individual) Heads() framework.HeadRange {
	return ind.heads
}

// Genes returns a copy of the decision vector.
func (ind *Individual) Genes() []float64 {
	out := make([]float64, len(ind.genes))
	copy(out, ind.genes)
	return out
}

// Pair returns the (start, end) heads of one segment.
func (ind *Individual) Pair(segment int) (start, end float64, err error) {
	if segment < 0 || segment >= ind.Segments() {
		return 0, 0, fmt.Errorf("segment %d out of range [0, %d)", segment, ind.Segments())
	}
	return ind.genes[2*segment], ind.genes[2*segment+1], nil
}

// SetPair replaces the (start, end) heads of one segment. Both values must
// lie inside the head range.
func (ind *Individual) SetPair(segment int, start, end float64) error {
	if segment < 0 || segment >= ind.Segments() {
		return fmt.Errorf("segment %d out of range [0, %d)", segment, ind.Segments())
	}
	if !ind.heads.Contains(start) {
		return fmt.Errorf("start head %v outside [%v, %v]", start, ind.heads.Min, ind.heads.Max)
	}
	if !ind.heads.Contains(end) {
		return fmt.Errorf("end head %v outside [%v, %v]", end, ind.heads.Min, ind.heads.Max)
	}
	ind.genes[2*segment] = start
	ind.genes[2*segment+1] = end
	return nil
}

// SetObjectives stores the evaluator's scores. Energy must be finite and
// non-negative; the unit cost must be non-negative or the InvalidCost
// sentinel.
func (ind *Individual) SetObjectives(energy, unitCost float64) error {
	if math.IsNaN(energy) || math.IsInf(energy, 0) || energy < 0 {
		return fmt.Errorf("energy output must be finite and non-negative, got %v", energy)
	}
	if framework.IsValidCost(unitCost) {
		if unitCost < 0 {
			return fmt.Errorf("unit cost must be non-negative or the invalid sentinel, got %v", unitCost)
		}
	} else if !math.IsInf(unitCost, 1) {
		return fmt.Errorf("unit cost must be non-negative or the invalid sentinel, got %v", unitCost)
	}
	ind.energy = energy
	ind.unitCost = unitCost
	return nil
}

// Energy returns the annual energy yield in MWh.
func (ind *Individual) Energy() float64 {
	return ind.energy
}

// UnitCost returns the levelised unit cost, or InvalidCost when no energy
// was produced.
func (ind *Individual) UnitCost() float64 {
	return ind.unitCost
}

// HasValidCost reports whether the individual carries a usable unit cost.
func (ind *Individual) HasValidCost() bool {
	return framework.IsValidCost(ind.unitCost)
}

// Rank returns the dominance front index assigned by non-dominated
// sorting, or Unranked.
func (ind *Individual) Rank() int {
	return ind.rank
}

// CrowdingDistance returns the diversity score assigned by the crowding
// pass, +Inf for boundary members.
func (ind *Individual) CrowdingDistance() float64 {
	return ind.distance
}

// Point returns the individual's position in objective space.
func (ind *Individual) Point() framework.Point {
	return framework.Point{Energy: ind.energy, UnitCost: ind.unitCost}
}

// Clone returns a fully independent deep copy, metadata included.
func (ind *Individual) Clone() *Individual {
	genes := make([]float64, len(ind.genes))
	copy(genes, ind.genes)
	return &Individual{
		genes:    genes,
		heads:    ind.heads,
		energy:   ind.energy,
		unitCost: ind.unitCost,
		rank:     ind.rank,
		distance: ind.distance,
	}
}

// equalGenesWithin reports whether both vectors match pairwise within tol.
func (ind *Individual) equalGenesWithin(other *Individual, tol float64) bool {
	if other == nil || len(ind.genes) != len(other.genes) {
		return false
	}
	for i := range ind.genes {
		if math.Abs(ind.genes[i]-other.genes[i]) > tol {
			return false
		}
	}
	return true
}

func (ind *Individual) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "energy=%.3f", ind.energy)
	if ind.HasValidCost() {
		fmt.Fprintf(&b, " cost=%.3f", ind.unitCost)
	} else {
		b.WriteString(" cost=invalid")
	}
	fmt.Fprintf(&b, " rank=%d pairs=[", ind.rank)
	for s := 0; s < ind.Segments(); s++ {
		if s > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "(%.2f,%.2f)", ind.genes[2*s], ind.genes[2*s+1])
	}
	b.WriteString("]")
	return b.String()
}
