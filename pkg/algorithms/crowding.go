package algorithms

import (
	"math"
	"sort"
)

// CalculateCrowdingDistance assigns every member of front its crowding
// distance: per objective, sort the front, give the two extremes +Inf, and
// give each interior member the gap between its neighbours normalised by
// the objective's range; the final distance is the sum over both
// objectives. A +Inf once assigned is never downgraded. The cost pass sees
// only valid-cost members and is skipped entirely below 3 of them, since
// fewer cannot define an interior neighbour; the energy pass always runs.
// The caller's slice order is left untouched.
func CalculateCrowdingDistance(front []*Individual) {
	switch len(front) {
	case 0:
		return
	case 1:
		front[0].distance = math.Inf(1)
		return
	}

	for _, ind := range front {
		ind.distance = 0
	}

	byEnergy := append([]*Individual(nil), front...)
	sort.SliceStable(byEnergy, func(i, j int) bool {
		return byEnergy[i].energy < byEnergy[j].energy
	})
	accumulateGaps(byEnergy, func(ind *Individual) float64 { return ind.energy })

	valid := make([]*Individual, 0, len(front))
	for _, ind := range front {
		if ind.HasValidCost() {
			valid = append(valid, ind)
		}
	}
	if len(valid) < 3 {
		return
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].unitCost < valid[j].unitCost
	})
	accumulateGaps(valid, func(ind *Individual) float64 { return ind.unitCost })
}

// accumulateGaps adds one objective's contribution to an already sorted
// group: +Inf at the extremes, normalised neighbour gaps inside. A zero
// range contributes nothing beyond the extremes.
func accumulateGaps(sorted []*Individual, value func(*Individual) float64) {
	sorted[0].distance = math.Inf(1)
	sorted[len(sorted)-1].distance = math.Inf(1)

	span := value(sorted[len(sorted)-1]) - value(sorted[0])
	if span == 0 {
		return
	}
	for i := 1; i < len(sorted)-1; i++ {
		sorted[i].distance += (value(sorted[i+1]) - value(sorted[i-1])) / span
	}
}

// SortByCrowdingDistance orders the front in place by descending distance.
func SortByCrowdingDistance(front []*Individual) {
	sort.SliceStable(front, func(i, j int) bool {
		return front[i].distance > front[j].distance
	})
}

// CrowdedCompare is the one comparison used by every selection routine:
// lower rank wins, ties go to the larger crowding distance. Negative means
// a precedes b, zero means tied. Both individuals are expected to be
// ranked.
func CrowdedCompare(a, b *Individual) int {
	if a.rank != b.rank {
		if a.rank < b.rank {
			return -1
		}
		return 1
	}
	switch {
	case a.distance > b.distance:
		return -1
	case a.distance < b.distance:
		return 1
	}
	return 0
}
