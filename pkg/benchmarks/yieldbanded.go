package benchmarks

import (
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// YieldBanded has a front broken into five disconnected bands, so the
// optimiser has to keep separated clusters alive instead of one
// contiguous arc. The raw cost term oscillates below zero; a constant
// shift of one keeps every cost non-negative without moving the bands.
type YieldBanded struct {
	genes int
}

// NewYieldBanded sizes the problem to the given gene count.
func NewYieldBanded(genes int) *YieldBanded {
	return &YieldBanded{genes: genes}
}

func (p *YieldBanded) Name() string {
	return "YieldBanded"
}

func (p *YieldBanded) Segments() int {
	return p.genes / 2
}

func (p *YieldBanded) Heads() framework.HeadRange {
	return framework.HeadRange{Min: 0, Max: 1}
}

func (p *YieldBanded) Evaluate(genes []float64) (float64, float64) {
	if len(genes) == 0 {
		return 0, framework.InvalidCost
	}
	g := costBase(genes)
	x := genes[0]
	ratio := x / g
	h := 1 - math.Sqrt(ratio) - ratio*math.Sin(10*math.Pi*x)
	return 1 - x, g*h + 1
}

// TrueFront samples the optimal curve densely and keeps only the
// non-dominated points, which is what carves out the five bands.
func (p *YieldBanded) TrueFront(n int) []framework.Point {
	if n < 2 {
		n = 2
	}
	candidates := make([]framework.Point, 4*n)
	for i := range candidates {
		x := float64(i) / float64(len(candidates)-1)
		cost := 2 - math.Sqrt(x) - x*math.Sin(10*math.Pi*x)
		candidates[i] = framework.Point{Energy: 1 - x, UnitCost: cost}
	}
	front := nonDominated(candidates)
	if len(front) <= n {
		return front
	}
	step := float64(len(front)-1) / float64(n-1)
	sampled := make([]framework.Point, n)
	for i := range sampled {
		sampled[i] = front[int(float64(i)*step+0.5)]
	}
	return sampled
}

// nonDominated keeps the points no other point beats on both objectives.
func nonDominated(points []framework.Point) []framework.Point {
	keep := make([]framework.Point, 0, len(points))
	for i, p := range points {
		dominated := false
		for j, q := range points {
			if i == j {
				continue
			}
			if q.Energy >= p.Energy && q.UnitCost <= p.UnitCost &&
				(q.Energy > p.Energy || q.UnitCost < p.UnitCost) {
				dominated = true
				break
			}
		}
		if !dominated {
			keep = append(keep, p)
		}
	}
	return keep
}
