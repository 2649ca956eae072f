package benchmarks

import (
	"github.com/barrageopt/barrageopt/pkg/framework"
)

// YieldCurved has a concave front, the shape crowding-distance selection
// finds hardest to hold on to: the knee dominates unless boundary
// solutions are kept alive.
type YieldCurved struct {
	genes int
}

// NewYieldCurved sizes the problem to the given gene count.
func NewYieldCurved(genes int) *YieldCurved {
	return &YieldCurved{genes: genes}
}

func (p *YieldCurved) Name() string {
	return "YieldCurved"
}

func (p *YieldCurved) Segments() int {
	return p.genes / 2
}

func (p *YieldCurved) Heads() framework.HeadRange {
	return framework.HeadRange{Min: 0, Max: 1}
}

func (p *YieldCurved) Evaluate(genes []float64) (float64, float64) {
	if len(genes) == 0 {
		return 0, framework.InvalidCost
	}
	g := costBase(genes)
	x := genes[0]
	ratio := x / g
	return 1 - x, g * (1 - ratio*ratio)
}

func (p *YieldCurved) TrueFront(n int) []framework.Point {
	if n < 2 {
		n = 2
	}
	points := make([]framework.Point, n)
	for i := range points {
		x := float64(i) / float64(n-1)
		points[i] = framework.Point{Energy: 1 - x, UnitCost: 1 - x*x}
	}
	return points
}
