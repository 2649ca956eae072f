package algorithms

import (
	"fmt"
	"math"
)

// spreadFloor is the absolute normalised-energy-spread threshold under
// which a front counts as collapsed for the diversity criterion.
const spreadFloor = 0.01

// Snapshot captures the Pareto front's quality at one generation.
type Snapshot struct {
	Generation   int
	ParetoSize   int
	MaxEnergy    float64
	MinUnitCost  float64
	Hypervolume  float64
	EnergySpread float64
	CostSpread   float64
}

// ConvergenceTracker watches per-generation snapshots of the Pareto front
// for stagnation over a sliding window. Three criteria are checked in
// order, any one sufficient: the hypervolume stopped moving, the best
// energy stopped moving, or the front size stopped moving while the energy
// spread collapsed. Once declared, convergence latches: the tracker never
// reverts, whatever later snapshots show.
type ConvergenceTracker struct {
	epsilon     float64
	window      int
	history     []Snapshot
	converged   bool
	reason      string
	convergedAt int
}

// NewConvergenceTracker builds a tracker for the given relative threshold
// and stagnation window.
func NewConvergenceTracker(epsilon float64, window int) (*ConvergenceTracker, error) {
	if math.IsNaN(epsilon) || epsilon < 0 {
		return nil, fmt.Errorf("convergence threshold must be non-negative, got %v", epsilon)
	}
	if window < 1 {
		return nil, fmt.Errorf("stagnation window must be at least 1 generation, got %d", window)
	}
	return &ConvergenceTracker{
		epsilon:     epsilon,
		window:      window,
		convergedAt: -1,
	}, nil
}

// Observe records the front at one generation, compares it against the
// snapshot from window generations earlier once enough history exists, and
// returns the new snapshot.
func (t *ConvergenceTracker) Observe(front []*Individual, generation int) Snapshot {
	snap := Snapshot{
		Generation:   generation,
		ParetoSize:   len(front),
		MaxEnergy:    maxEnergy(front),
		MinUnitCost:  minValidCost(front),
		Hypervolume:  Hypervolume(front),
		EnergySpread: EnergySpread(front),
		CostSpread:   CostSpread(front),
	}
	t.history = append(t.history, snap)
	if t.converged {
		return snap
	}

	past := len(t.history) - 1 - t.window
	if past < 0 {
		return snap
	}
	ref := t.history[past]
	switch {
	case relativeChange(ref.Hypervolume, snap.Hypervolume) < t.epsilon:
		t.latch(generation, "hypervolume stagnated")
	case relativeChange(ref.MaxEnergy, snap.MaxEnergy) < t.epsilon:
		t.latch(generation, "max energy stagnated")
	case relativeChange(float64(ref.ParetoSize), float64(snap.ParetoSize)) < t.epsilon && snap.EnergySpread < spreadFloor:
		t.latch(generation, "front size stagnated with collapsed energy spread")
	}
	return snap
}

func (t *ConvergenceTracker) latch(generation int, reason string) {
	t.converged = true
	t.reason = reason
	t.convergedAt = generation
}

// Converged reports whether stagnation has been declared.
func (t *ConvergenceTracker) Converged() bool {
	return t.converged
}

// Reason returns the criterion that latched convergence, empty while the
// search is still moving.
func (t *ConvergenceTracker) Reason() string {
	return t.reason
}

// ConvergedAt returns the generation convergence latched at, -1 before.
func (t *ConvergenceTracker) ConvergedAt() int {
	return t.convergedAt
}

// History returns a copy of every snapshot observed so far.
func (t *ConvergenceTracker) History() []Snapshot {
	out := make([]Snapshot, len(t.history))
	copy(out, t.history)
	return out
}

// relativeChange is |cur-past| / |past|. A change from zero counts as
// unbounded, no change at all as zero, so the result is never NaN.
func relativeChange(past, cur float64) float64 {
	if past == cur {
		return 0
	}
	if past == 0 {
		return math.Inf(1)
	}
	return math.Abs(cur-past) / math.Abs(past)
}
