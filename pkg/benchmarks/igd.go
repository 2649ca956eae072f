package benchmarks

import (
	"errors"
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// IGD is the inverted generational distance: the mean Euclidean distance
// from each reference point to the nearest obtained point. Lower is
// better; zero means the reference front is fully covered. Obtained
// points without a valid cost are ignored.
func IGD(obtained, reference []framework.Point) (float64, error) {
	if len(reference) == 0 {
		return 0, errors.New("reference front is empty")
	}
	valid := make([]framework.Point, 0, len(obtained))
	for _, pt := range obtained {
		if pt.HasValidCost() {
			valid = append(valid, pt)
		}
	}
	if len(valid) == 0 {
		return 0, errors.New("no obtained points with a valid cost")
	}
	total := 0.0
	for _, ref := range reference {
		best := math.Inf(1)
		for _, got := range valid {
			de := got.Energy - ref.Energy
			dc := got.UnitCost - ref.UnitCost
			if d := de*de + dc*dc; d < best {
				best = d
			}
		}
		total += math.Sqrt(best)
	}
	return total / float64(len(reference)), nil
}
