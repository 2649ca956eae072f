package benchmarks

import (
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// YieldFlat has a convex energy/cost front: every megawatt-hour given up
// buys a smaller cost saving than the one before. The first gene sets the
// yield and the tail genes add a cost penalty the optimiser must drive to
// zero.
type YieldFlat struct {
	genes int
}

// NewYieldFlat sizes the problem to the given gene count. Thirty genes is
// the standard size; odd counts lose their last gene to pairing.
func NewYieldFlat(genes int) *YieldFlat {
	return &YieldFlat{genes: genes}
}

func (p *YieldFlat) Name() string {
	return "YieldFlat"
}

func (p *YieldFlat) Segments() int {
	return p.genes / 2
}

func (p *YieldFlat) Heads() framework.HeadRange {
	return framework.HeadRange{Min: 0, Max: 1}
}

func (p *YieldFlat) Evaluate(genes []float64) (float64, float64) {
	if len(genes) == 0 {
		return 0, framework.InvalidCost
	}
	g := costBase(genes)
	x := genes[0]
	return 1 - x, g * (1 - math.Sqrt(x/g))
}

func (p *YieldFlat) TrueFront(n int) []framework.Point {
	if n < 2 {
		n = 2
	}
	points := make([]framework.Point, n)
	for i := range points {
		x := float64(i) / float64(n-1)
		points[i] = framework.Point{Energy: 1 - x, UnitCost: 1 - math.Sqrt(x)}
	}
	return points
}

// costBase is the shared penalty term: one when every tail gene sits at
// zero, rising toward ten as the tail drifts high.
func costBase(genes []float64) float64 {
	if len(genes) < 2 {
		return 1
	}
	sum := 0.0
	for _, v := range genes[1:] {
		sum += v
	}
	return 1 + 9*sum/float64(len(genes)-1)
}
