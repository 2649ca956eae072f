package algorithms

import (
	"errors"
	"math"
	"testing"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

func TestPopulationAddRespectsCapacity(t *testing.T) {
	pop, err := NewPopulation(2)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	if err := pop.Add(testIndividual(t, 10, 5)); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := pop.Add(testIndividual(t, 20, 4)); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	err = pop.Add(testIndividual(t, 30, 3))
	if !errors.Is(err, ErrPopulationFull) {
		t.Errorf("Add past capacity returned %v, want ErrPopulationFull", err)
	}
	if pop.Size() != 2 || pop.Capacity() != 2 {
		t.Errorf("Size/Capacity = %d/%d, want 2/2", pop.Size(), pop.Capacity())
	}

	if err := pop.Add(nil); err == nil {
		t.Error("expected error adding a nil individual")
	}
	if _, err := NewPopulation(0); err == nil {
		t.Error("expected error for zero capacity")
	}
}

func TestPopulationGetAndRemove(t *testing.T) {
	a := testIndividual(t, 10, 5)
	b := testIndividual(t, 20, 4)
	c := testIndividual(t, 30, 3)
	pop := mustPopulationOf(t, a, b, c)

	got, err := pop.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got != b {
		t.Error("Get(1) returned the wrong member")
	}
	if _, err := pop.Get(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(3) returned %v, want ErrIndexOutOfRange", err)
	}
	if _, err := pop.Get(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(-1) returned %v, want ErrIndexOutOfRange", err)
	}

	if err := pop.Remove(1); err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	if pop.Size() != 2 {
		t.Errorf("Size after remove = %d, want 2", pop.Size())
	}
	got, err = pop.Get(1)
	if err != nil {
		t.Fatalf("Get(1) after remove: %v", err)
	}
	if got != c {
		t.Error("Remove did not preserve member order")
	}
	if err := pop.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove(5) returned %v, want ErrIndexOutOfRange", err)
	}
}

func TestPopulationCombineClonesMembers(t *testing.T) {
	p := mustPopulationOf(t, testIndividual(t, 10, 5), testIndividual(t, 20, 4))
	q := mustPopulationOf(t, testIndividual(t, 30, 3))

	combined, err := p.Combine(q)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if combined.Size() != p.Size()+q.Size() {
		t.Errorf("combined size = %d, want %d", combined.Size(), p.Size()+q.Size())
	}
	if combined.Capacity() != p.Capacity()+q.Capacity() {
		t.Errorf("combined capacity = %d, want %d", combined.Capacity(), p.Capacity()+q.Capacity())
	}

	sources := map[*Individual]bool{}
	for _, ind := range append(p.Members(), q.Members()...) {
		sources[ind] = true
	}
	for i, ind := range combined.Members() {
		if sources[ind] {
			t.Errorf("combined member %d shares identity with a source member", i)
		}
	}

	// Editing a combined member must not leak into the sources.
	first, err := combined.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if err := first.SetPair(0, 1.0, 0.5); err != nil {
		t.Fatalf("SetPair: %v", err)
	}
	origFirst, err := p.Get(0)
	if err != nil {
		t.Fatalf("Get(0) on source: %v", err)
	}
	if start, _, _ := origFirst.Pair(0); start == 1.0 {
		t.Error("editing a combined member changed its source")
	}

	if _, err := p.Combine(nil); err == nil {
		t.Error("expected error combining with nil")
	}
}

func TestPopulationSortIsStable(t *testing.T) {
	a := testIndividual(t, 30, 3)
	b := testIndividual(t, 10, 5)
	c := testIndividual(t, 20, 4)
	pop := mustPopulationOf(t, a, b, c)

	pop.Sort(func(x, y *Individual) bool { return x.Energy() < y.Energy() })

	want := []*Individual{b, c, a}
	for i, w := range want {
		got, err := pop.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != w {
			t.Errorf("member %d has energy %v, want %v", i, got.Energy(), w.Energy())
		}
	}
}

func TestStatisticsExcludesInvalidCosts(t *testing.T) {
	pop := mustPopulationOf(t,
		testIndividual(t, 100, 50),
		testIndividual(t, 200, 30),
		testIndividual(t, 0, framework.InvalidCost),
	)
	s := pop.Statistics()

	if s.Size != 3 {
		t.Errorf("Size = %d, want 3", s.Size)
	}
	if s.ValidCosts != 2 {
		t.Errorf("ValidCosts = %d, want 2", s.ValidCosts)
	}
	if s.MinEnergy != 0 || s.MaxEnergy != 200 {
		t.Errorf("energy bounds = [%v, %v], want [0, 200]", s.MinEnergy, s.MaxEnergy)
	}
	if s.MeanEnergy != 100 {
		t.Errorf("MeanEnergy = %v, want 100", s.MeanEnergy)
	}
	if s.MinUnitCost != 30 || s.MaxUnitCost != 50 || s.MeanUnitCost != 40 {
		t.Errorf("cost aggregates = [%v, %v, mean %v], want [30, 50, mean 40]",
			s.MinUnitCost, s.MaxUnitCost, s.MeanUnitCost)
	}
}

func TestStatisticsAllInvalidCostsReportsSentinel(t *testing.T) {
	pop := mustPopulationOf(t,
		testIndividual(t, 0, framework.InvalidCost),
		testIndividual(t, 0, framework.InvalidCost),
	)
	s := pop.Statistics()
	if s.ValidCosts != 0 {
		t.Errorf("ValidCosts = %d, want 0", s.ValidCosts)
	}
	for name, v := range map[string]float64{
		"MinUnitCost":  s.MinUnitCost,
		"MaxUnitCost":  s.MaxUnitCost,
		"MeanUnitCost": s.MeanUnitCost,
	} {
		if !math.IsInf(v, 1) {
			t.Errorf("%s = %v, want the invalid sentinel", name, v)
		}
	}
}

func TestStatisticsEmptyPopulation(t *testing.T) {
	pop, err := NewPopulation(4)
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	s := pop.Statistics()
	if s.Size != 0 || s.ValidCosts != 0 {
		t.Errorf("empty stats sized %d/%d, want 0/0", s.Size, s.ValidCosts)
	}
	if !math.IsInf(s.MeanUnitCost, 1) {
		t.Errorf("MeanUnitCost = %v, want the invalid sentinel", s.MeanUnitCost)
	}
}
