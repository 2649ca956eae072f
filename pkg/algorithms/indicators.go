package algorithms

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// Hypervolume estimates the objective-space area a front dominates,
// relative to a reference point at zero energy and 1.1 times the front's
// own worst valid cost. Members carrying the invalid-cost sentinel
// contribute nothing; an empty or all-invalid front scores 0. The front is
// assumed mutually non-dominated.
func Hypervolume(front []*Individual) float64 {
	points := validPoints(front)
	if len(points) == 0 {
		return 0
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Energy < points[j].Energy
	})

	maxCost := 0.0
	for _, p := range points {
		if p.UnitCost > maxCost {
			maxCost = p.UnitCost
		}
	}
	refCost := 1.1 * maxCost
	if refCost == 0 {
		refCost = 1
	}

	hv := 0.0
	prevEnergy := 0.0
	for _, p := range points {
		hv += (p.Energy - prevEnergy) * math.Max(0, refCost-p.UnitCost)
		prevEnergy = p.Energy
	}
	return hv
}

// Spacing is Schott's spacing metric over the front's valid-cost members:
// the spread of nearest-neighbour L1 distances in objective space. Fronts
// with fewer than two valid members score 0; evenly spaced fronts score
// near 0.
func Spacing(front []*Individual) float64 {
	points := validPoints(front)
	if len(points) < 2 {
		return 0
	}
	nearest := make([]float64, len(points))
	for i := range points {
		min := math.Inf(1)
		for j := range points {
			if i == j {
				continue
			}
			d := math.Abs(points[i].Energy-points[j].Energy) + math.Abs(points[i].UnitCost-points[j].UnitCost)
			if d < min {
				min = d
			}
		}
		nearest[i] = min
	}
	return stat.StdDev(nearest, nil)
}

// EnergySpread is the front's normalised energy span (max-min)/max, 0 for
// empty fronts or when the best energy is 0.
func EnergySpread(front []*Individual) float64 {
	if len(front) == 0 {
		return 0
	}
	min, max := front[0].energy, front[0].energy
	for _, ind := range front[1:] {
		if ind.energy < min {
			min = ind.energy
		}
		if ind.energy > max {
			max = ind.energy
		}
	}
	if max == 0 {
		return 0
	}
	return (max - min) / max
}

// CostSpread is the normalised span of the front's valid costs, 0 when
// fewer than one valid cost exists or the worst valid cost is 0.
func CostSpread(front []*Individual) float64 {
	min, max := math.Inf(1), math.Inf(-1)
	for _, ind := range front {
		if !ind.HasValidCost() {
			continue
		}
		if ind.unitCost < min {
			min = ind.unitCost
		}
		if ind.unitCost > max {
			max = ind.unitCost
		}
	}
	if math.IsInf(min, 1) || max == 0 {
		return 0
	}
	return (max - min) / max
}

func validPoints(front []*Individual) []framework.Point {
	points := make([]framework.Point, 0, len(front))
	for _, ind := range front {
		if ind.HasValidCost() {
			points = append(points, ind.Point())
		}
	}
	return points
}

func maxEnergy(front []*Individual) float64 {
	max := 0.0
	for _, ind := range front {
		if ind.energy > max {
			max = ind.energy
		}
	}
	return max
}

func minValidCost(front []*Individual) float64 {
	min := framework.InvalidCost
	for _, ind := range front {
		if ind.HasValidCost() && ind.unitCost < min {
			min = ind.unitCost
		}
	}
	return min
}
