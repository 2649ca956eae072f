package barrage

import (
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// Constraint reports whether a strategy is operationally feasible.
// Constraints screen candidate strategies; the evaluator itself scores
// infeasible ones honestly rather than rejecting them.
type Constraint func(strategy []float64) bool

// HeadRangeConstraint checks that a strategy is a non-empty list of pairs
// with every threshold inside the admissible head interval.
func HeadRangeConstraint(heads framework.HeadRange) Constraint {
	return func(strategy []float64) bool {
		if len(strategy) == 0 || len(strategy)%2 != 0 {
			return false
		}
		for _, g := range strategy {
			if math.IsNaN(g) || !heads.Contains(g) {
				return false
			}
		}
		return true
	}
}

// GenerationWindowConstraint checks that every pair opens a generating
// window of at least minDepth: the start threshold must sit that far
// above the end threshold, or the turbines never get a worthwhile run.
func GenerationWindowConstraint(minDepth float64) Constraint {
	return func(strategy []float64) bool {
		if len(strategy) == 0 || len(strategy)%2 != 0 {
			return false
		}
		for i := 0; i < len(strategy); i += 2 {
			if strategy[i]-strategy[i+1] < minDepth {
				return false
			}
		}
		return true
	}
}

// CombineConstraints folds several constraints into one that requires
// all of them.
func CombineConstraints(constraints ...Constraint) Constraint {
	return func(strategy []float64) bool {
		for _, constraint := range constraints {
			if !constraint(strategy) {
				return false
			}
		}
		return true
	}
}

// OperatingFeasibility is the standard screen: thresholds in range and a
// generating window of at least minDepth per segment.
func OperatingFeasibility(heads framework.HeadRange, minDepth float64) Constraint {
	return CombineConstraints(
		HeadRangeConstraint(heads),
		GenerationWindowConstraint(minDepth),
	)
}
