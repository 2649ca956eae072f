package algorithms

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestTournamentSelectValidatesArguments(t *testing.T) {
	pop := mustPopulationOf(t, testIndividual(t, 10, 5))
	FastNonDominatedSort(pop)
	rng := rand.New(rand.NewSource(1))

	if _, err := TournamentSelect(nil, 2, 4, rng); err == nil {
		t.Error("expected error for nil population")
	}
	empty, _ := NewPopulation(4)
	if _, err := TournamentSelect(empty, 2, 4, rng); err == nil {
		t.Error("expected error for empty population")
	}
	if _, err := TournamentSelect(pop, 0, 4, rng); err == nil {
		t.Error("expected error for tournament size 0")
	}
	if _, err := TournamentSelect(pop, 2, -1, rng); err == nil {
		t.Error("expected error for negative selection count")
	}
	if _, err := TournamentSelect(pop, 2, 4, nil); err == nil {
		t.Error("expected error for nil random source")
	}
}

func TestTournamentSelectClonesWinners(t *testing.T) {
	a := testIndividual(t, 100, 10)
	b := testIndividual(t, 10, 100)
	pop := mustPopulationOf(t, a, b)
	for _, front := range FastNonDominatedSort(pop) {
		CalculateCrowdingDistance(front)
	}

	winners, err := TournamentSelect(pop, 2, 6, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("TournamentSelect: %v", err)
	}
	if len(winners) != 6 {
		t.Fatalf("got %d winners, want 6", len(winners))
	}
	for i, w := range winners {
		if w == a || w == b {
			t.Errorf("winner %d shares identity with a population member", i)
		}
		// Dominating member a always wins a tournament it enters.
		if w.Energy() == b.Energy() && w.UnitCost() == b.UnitCost() {
			// b can still win a (b, b) draw.
			continue
		}
		if w.Energy() != a.Energy() {
			t.Errorf("winner %d is neither parent: energy %v", i, w.Energy())
		}
	}
}

func TestBinaryTournamentPrefersLowerRank(t *testing.T) {
	// a dominates b, so after sorting a FIRST front {a} and a second {b},
	// every mixed tournament must pick a.
	a := testIndividual(t, 100, 10)
	b := testIndividual(t, 50, 20)
	pop := mustPopulationOf(t, a, b)
	for _, front := range FastNonDominatedSort(pop) {
		CalculateCrowdingDistance(front)
	}

	winners, err := SelectParents(pop, 200, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("SelectParents: %v", err)
	}
	sawB := 0
	for _, w := range winners {
		if w.Energy() == b.Energy() {
			sawB++
		}
	}
	// b only survives all-b draws, roughly a quarter of 200 tournaments.
	if sawB > 110 {
		t.Errorf("dominated parent won %d of 200 binary tournaments", sawB)
	}
}

func TestCombinePopulationsKeepsEveryMember(t *testing.T) {
	p1 := testIndividual(t, 10, 1)
	p2 := testIndividual(t, 20, 2)
	o1 := testIndividual(t, 30, 3)
	parents := mustPopulationOf(t, p1, p2)
	offspring := mustPopulationOf(t, o1)

	combined, err := CombinePopulations(parents, offspring)
	if err != nil {
		t.Fatalf("CombinePopulations: %v", err)
	}
	if combined.Size() != 3 {
		t.Fatalf("combined size = %d, want 3", combined.Size())
	}
	if combined.Capacity() != 3 {
		t.Errorf("combined capacity = %d, want 3", combined.Capacity())
	}
	wantEnergies := []float64{10, 20, 30}
	for i, want := range wantEnergies {
		got, err := combined.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got.Energy() != want {
			t.Errorf("member %d energy = %v, want %v", i, got.Energy(), want)
		}
		if got == p1 || got == p2 || got == o1 {
			t.Errorf("member %d shares identity with an input member", i)
		}
	}

	if _, err := CombinePopulations(nil, offspring); err == nil {
		t.Error("expected error for nil parents")
	}
	if _, err := CombinePopulations(parents, nil); err == nil {
		t.Error("expected error for nil offspring")
	}
}

func TestSelectNextGenerationPassesThroughSmallPopulations(t *testing.T) {
	pop := mustPopulationOf(t,
		testIndividual(t, 10, 1),
		testIndividual(t, 20, 2),
	)

	next, stats, err := SelectNextGeneration(pop, 5)
	if err != nil {
		t.Fatalf("SelectNextGeneration: %v", err)
	}
	if next != pop {
		t.Error("a population within the target should be returned unchanged")
	}
	if !stats.Passthrough {
		t.Error("stats should flag the pass-through")
	}
	if stats.BeforeSize != 2 || stats.AfterSize != 2 {
		t.Errorf("stats sizes = %d -> %d, want 2 -> 2", stats.BeforeSize, stats.AfterSize)
	}
	if stats.TruncatedFront != -1 {
		t.Errorf("TruncatedFront = %d, want -1", stats.TruncatedFront)
	}
}

func TestSelectNextGenerationValidatesArguments(t *testing.T) {
	if _, _, err := SelectNextGeneration(nil, 4); err == nil {
		t.Error("expected error for nil population")
	}
	pop := mustPopulationOf(t, testIndividual(t, 10, 1))
	if _, _, err := SelectNextGeneration(pop, 0); err == nil {
		t.Error("expected error for target size 0")
	}
}

func TestSelectNextGenerationAcceptsWholeFrontsFirst(t *testing.T) {
	// Front 0: two mutually non-dominated members. Front 1: one dominated
	// member. Target 3 accepts both fronts whole.
	f0a := testIndividual(t, 100, 10)
	f0b := testIndividual(t, 120, 20)
	f1 := testIndividual(t, 90, 15)
	extra := testIndividual(t, 80, 30)
	combined := mustPopulationOf(t, f1, f0a, extra, f0b)

	next, stats, err := SelectNextGeneration(combined, 3)
	if err != nil {
		t.Fatalf("SelectNextGeneration: %v", err)
	}
	if next.Size() != 3 {
		t.Fatalf("next size = %d, want 3", next.Size())
	}
	if stats.WholeFronts != 2 {
		t.Errorf("WholeFronts = %d, want 2", stats.WholeFronts)
	}
	if stats.TruncatedFront != -1 {
		t.Errorf("TruncatedFront = %d, want -1 when fronts fit exactly", stats.TruncatedFront)
	}
	for _, ind := range next.Members() {
		if ind.Energy() == extra.Energy() {
			t.Error("the worst-ranked member survived selection")
		}
	}
	if err := ValidateSelection(combined, next, 1e-12); err != nil {
		t.Errorf("ValidateSelection: %v", err)
	}
}

func TestSelectNextGenerationTruncatesByCrowding(t *testing.T) {
	// Five mutually non-dominated members along a diagonal trade-off plus
	// three dominated ones. Target 3 truncates the first front itself: the
	// two extremes hold infinite distance and must survive; the third
	// survivor is the interior member with the widest neighbour gaps.
	front := []*Individual{
		testIndividual(t, 10, 10),
		testIndividual(t, 20, 20),
		testIndividual(t, 30, 30),
		testIndividual(t, 40, 40),
		testIndividual(t, 50, 50),
	}
	dominated := []*Individual{
		testIndividual(t, 5, 60),
		testIndividual(t, 8, 70),
		testIndividual(t, 3, 80),
	}
	combined := mustPopulationOf(t, front[2], dominated[0], front[0], front[4],
		dominated[1], front[1], dominated[2], front[3])

	next, stats, err := SelectNextGeneration(combined, 3)
	if err != nil {
		t.Fatalf("SelectNextGeneration: %v", err)
	}
	if next.Size() != 3 {
		t.Fatalf("next size = %d, want 3", next.Size())
	}
	if stats.WholeFronts != 0 {
		t.Errorf("WholeFronts = %d, want 0", stats.WholeFronts)
	}
	if stats.TruncatedFront != 0 {
		t.Errorf("TruncatedFront = %d, want 0", stats.TruncatedFront)
	}
	if stats.TruncatedKept != 3 {
		t.Errorf("TruncatedKept = %d, want 3", stats.TruncatedKept)
	}

	members := next.Members()
	hasEnergy := func(e float64) bool {
		for _, ind := range members {
			if ind.Energy() == e {
				return true
			}
		}
		return false
	}
	if !hasEnergy(10) || !hasEnergy(50) {
		t.Error("both boundary members of the truncated front must survive")
	}
	for _, ind := range members {
		if ind.Rank() != 0 {
			t.Errorf("survivor with rank %d, want only rank 0", ind.Rank())
		}
	}
	// Survivors arrive in non-increasing crowding-distance order.
	for i := 1; i < len(members); i++ {
		prev, cur := members[i-1].CrowdingDistance(), members[i].CrowdingDistance()
		if !math.IsInf(prev, 1) && prev < cur {
			t.Errorf("survivor %d has larger distance (%v) than survivor %d (%v)",
				i, cur, i-1, prev)
		}
	}
	if err := ValidateSelection(combined, next, 1e-12); err != nil {
		t.Errorf("ValidateSelection: %v", err)
	}
}

func TestValidateSelectionCatchesInventedMembers(t *testing.T) {
	before := mustPopulationOf(t,
		testIndividual(t, 10, 1),
		testIndividual(t, 20, 2),
	)
	invented, err := NewIndividualWithGenes([]float64{3.5, 0.5}, before.members[0].Heads())
	if err != nil {
		t.Fatalf("NewIndividualWithGenes: %v", err)
	}
	after := mustPopulationOf(t, invented)

	if err := ValidateSelection(before, after, 1e-9); err == nil {
		t.Error("expected error for a selected member absent from the source")
	}

	grown := mustPopulationOf(t,
		testIndividual(t, 10, 1),
		testIndividual(t, 20, 2),
		testIndividual(t, 30, 3),
	)
	if err := ValidateSelection(before, grown, 1e-9); err == nil {
		t.Error("expected error when selection grows the population")
	}
}
