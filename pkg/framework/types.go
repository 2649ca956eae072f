// Package framework holds the shared contracts between the optimiser core,
// the objective evaluators, and the benchmark problems: the two-objective
// point type, the admissible head interval, and the evaluator signature.
package framework

import (
	"fmt"
	"math"
)

// InvalidCost is the sentinel unit cost for strategies that produced no
// energy: with nothing generated the levelised cost is undefined, and any
// valid cost must beat it. It is +Inf so ordinary comparisons need no
// special casing beyond IsValidCost.
var InvalidCost = math.Inf(1)

// IsValidCost reports whether c is a usable unit cost rather than the
// invalid sentinel or a numeric accident.
func IsValidCost(c float64) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0)
}

// Point is a position in objective space: annual energy yield in MWh
// (maximised) and levelised unit cost in currency per MWh (minimised, or
// InvalidCost).
type Point struct {
	Energy   float64
	UnitCost float64
}

// HasValidCost reports whether the point carries a usable unit cost.
func (p Point) HasValidCost() bool {
	return IsValidCost(p.UnitCost)
}

// HeadRange is the closed interval of admissible head set-points in metres.
// Every gene of every individual stays inside it; operators clamp rather
// than reject.
type HeadRange struct {
	Min float64
	Max float64
}

// DefaultHeadRange covers typical operating heads for a mid-size barrage.
var DefaultHeadRange = HeadRange{Min: 0.0, Max: 4.0}

// Contains reports whether h lies inside the closed interval.
func (r HeadRange) Contains(h float64) bool {
	return h >= r.Min && h <= r.Max
}

// Clamp returns h forced into the interval.
func (r HeadRange) Clamp(h float64) float64 {
	if h < r.Min {
		return r.Min
	}
	if h > r.Max {
		return r.Max
	}
	return h
}

// Span returns the interval width in metres.
func (r HeadRange) Span() float64 {
	return r.Max - r.Min
}

// Validate rejects empty, negative, or non-finite intervals.
func (r HeadRange) Validate() error {
	if math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("head range bounds must be finite, got [%v, %v]", r.Min, r.Max)
	}
	if r.Min < 0 {
		return fmt.Errorf("head range must be non-negative, got min %v", r.Min)
	}
	if r.Max <= r.Min {
		return fmt.Errorf("head range needs min < max, got [%v, %v]", r.Min, r.Max)
	}
	return nil
}

// EvaluateFunc scores one decision vector, returning annual energy yield
// and levelised unit cost. Implementations must honour the InvalidCost
// convention when no energy is produced, and must be safe for concurrent
// use: the optimiser fans evaluation out over a worker pool.
type EvaluateFunc func(genes []float64) (energy, unitCost float64)

// Problem is an analytic test problem with a known Pareto front, used by
// the benchmark suite to validate the optimiser end to end.
type Problem interface {
	Name() string
	Segments() int
	Heads() HeadRange
	Evaluate(genes []float64) (energy, unitCost float64)
	TrueFront(n int) []Point
}
