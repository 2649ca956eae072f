package algorithms

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// TournamentSelect runs n independent k-way tournaments with replacement
// and returns a clone of each winner, judged by CrowdedCompare. The
// population must already be ranked.
func TournamentSelect(pop *Population, k, n int, rng *rand.Rand) ([]*Individual, error) {
	if pop == nil || pop.Size() == 0 {
		return nil, fmt.Errorf("tournament selection needs a non-empty population")
	}
	if k < 1 {
		return nil, fmt.Errorf("tournament size must be at least 1, got %d", k)
	}
	if n < 0 {
		return nil, fmt.Errorf("selection count must be non-negative, got %d", n)
	}
	if rng == nil {
		return nil, fmt.Errorf("tournament selection needs a random source")
	}

	winners := make([]*Individual, 0, n)
	for t := 0; t < n; t++ {
		best := pop.members[rng.Intn(pop.Size())]
		for j := 1; j < k; j++ {
			contestant := pop.members[rng.Intn(pop.Size())]
			if CrowdedCompare(contestant, best) < 0 {
				best = contestant
			}
		}
		winners = append(winners, best.Clone())
	}
	return winners, nil
}

// SelectParents draws n parents by binary tournament.
func SelectParents(pop *Population, n int, rng *rand.Rand) ([]*Individual, error) {
	return TournamentSelect(pop, 2, n, rng)
}

// CombinePopulations returns a new population holding deep clones of every
// member of parents then offspring, with capacity equal to the sum of both
// capacities.
func CombinePopulations(parents, offspring *Population) (*Population, error) {
	if parents == nil || offspring == nil {
		return nil, fmt.Errorf("combining populations needs both of them")
	}
	return parents.Combine(offspring)
}

// SelectionStats describes one environmental-selection step.
type SelectionStats struct {
	BeforeSize int
	AfterSize  int
	// WholeFronts is the number of fronts accepted without truncation.
	WholeFronts int
	// TruncatedFront is the rank of the front reduced by crowding
	// distance, -1 when none was.
	TruncatedFront int
	// TruncatedKept is how many members survived from that front.
	TruncatedKept int
	// Passthrough is set when the input already fit the target.
	Passthrough bool
}

// SelectNextGeneration reduces combined to at most target members. A
// population already within the target is returned unchanged. Otherwise
// the fronts of a fresh non-dominated sort are accepted whole, in rank
// order, while they fit; the first front that would overflow is cut down
// to the members with the largest crowding distance within that front, so
// the result is exactly target-sized, biased to low rank and then to
// diversity.
func SelectNextGeneration(combined *Population, target int) (*Population, SelectionStats, error) {
	stats := SelectionStats{TruncatedFront: -1}
	if combined == nil {
		return nil, stats, fmt.Errorf("next-generation selection needs a population")
	}
	if target < 1 {
		return nil, stats, fmt.Errorf("target size must be positive, got %d", target)
	}
	stats.BeforeSize = combined.Size()

	if combined.Size() <= target {
		stats.AfterSize = combined.Size()
		stats.Passthrough = true
		return combined, stats, nil
	}

	next, err := NewPopulation(target)
	if err != nil {
		return nil, stats, err
	}
	for rank, front := range FastNonDominatedSort(combined) {
		CalculateCrowdingDistance(front)
		if next.Size()+len(front) <= target {
			for _, ind := range front {
				if err := next.Add(ind); err != nil {
					return nil, stats, err
				}
			}
			stats.WholeFronts++
			if next.Size() == target {
				break
			}
			continue
		}

		remaining := target - next.Size()
		byDistance := append([]*Individual(nil), front...)
		SortByCrowdingDistance(byDistance)
		for _, ind := range byDistance[:remaining] {
			if err := next.Add(ind); err != nil {
				return nil, stats, err
			}
		}
		stats.TruncatedFront = rank
		stats.TruncatedKept = remaining
		break
	}
	stats.AfterSize = next.Size()
	return next, stats, nil
}

// ValidateSelection confirms that after is a legitimate selection from
// before: no larger, and every member's decision vector matches some
// member of before within tol. It guards against selection inventing or
// corrupting individuals.
func ValidateSelection(before, after *Population, tol float64) error {
	if before == nil || after == nil {
		return fmt.Errorf("selection validation needs both populations")
	}
	if after.Size() > before.Size() {
		return fmt.Errorf("selection grew the population from %d to %d members", before.Size(), after.Size())
	}
	for i, ind := range after.members {
		found := false
		for _, src := range before.members {
			if ind.equalGenesWithin(src, tol) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("selected individual %d matches nothing in the source population", i)
		}
	}
	return nil
}
