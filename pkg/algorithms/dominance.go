package algorithms

// Dominates reports whether a dominates b under the barrage objectives:
// energy maximised, unit cost minimised. A valid cost always beats the
// invalid sentinel; between two invalid costs only energy counts;
// otherwise a must be at least as good on both objectives and strictly
// better on one. The relation is irreflexive and asymmetric.
func Dominates(a, b *Individual) bool {
	switch {
	case !a.HasValidCost() && b.HasValidCost():
		return false
	case a.HasValidCost() && !b.HasValidCost():
		return true
	case !a.HasValidCost() && !b.HasValidCost():
		return a.energy > b.energy
	}
	return a.energy >= b.energy && a.unitCost <= b.unitCost &&
		(a.energy > b.energy || a.unitCost < b.unitCost)
}

// FastNonDominatedSort partitions the population into ranked fronts and
// assigns each member's rank. Front 0 holds the non-dominated members;
// front k holds members dominated only by earlier fronts. Every member
// lands in exactly one front, an empty population yields no fronts, and
// this is the only place rank is assigned.
func FastNonDominatedSort(pop *Population) [][]*Individual {
	if pop == nil || pop.Size() == 0 {
		return nil
	}
	members := pop.members

	dominated := make(map[int][]int, len(members))
	domCount := make([]int, len(members))

	for i := range members {
		for j := range members {
			if i == j {
				continue
			}
			if Dominates(members[i], members[j]) {
				dominated[i] = append(dominated[i], j)
			} else if Dominates(members[j], members[i]) {
				domCount[i]++
			}
		}
	}

	var fronts [][]*Individual
	var current []int
	for i := range members {
		if domCount[i] == 0 {
			members[i].rank = 0
			current = append(current, i)
		}
	}

	rank := 0
	for len(current) > 0 {
		front := make([]*Individual, len(current))
		for i, idx := range current {
			front[i] = members[idx]
		}
		fronts = append(fronts, front)

		var next []int
		for _, idx := range current {
			for _, d := range dominated[idx] {
				domCount[d]--
				if domCount[d] == 0 {
					members[d].rank = rank + 1
					next = append(next, d)
				}
			}
		}
		rank++
		current = next
	}
	return fronts
}

// ParetoFront returns front 0 of the population, ranking it as a side
// effect. Empty populations yield nil.
func ParetoFront(pop *Population) []*Individual {
	fronts := FastNonDominatedSort(pop)
	if len(fronts) == 0 {
		return nil
	}
	return fronts[0]
}
