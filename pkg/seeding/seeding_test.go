package seeding_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/seeding"
)

var testHeads = framework.HeadRange{Min: 0, Max: 4}

func TestInitializerPopulationShape(t *testing.T) {
	init := seeding.Initializer(seeding.Config{})
	members, err := init(rand.New(rand.NewSource(1)), 3, testHeads, 20)
	if err != nil {
		t.Fatalf("initializer failed: %v", err)
	}
	if len(members) != 20 {
		t.Fatalf("got %d members, want 20", len(members))
	}
	for i, ind := range members {
		if ind.Segments() != 3 {
			t.Errorf("member %d has %d segments, want 3", i, ind.Segments())
		}
		if ind.Rank() != algorithms.Unranked {
			t.Errorf("member %d already ranked", i)
		}
		for g, v := range ind.Genes() {
			if !testHeads.Contains(v) {
				t.Errorf("member %d gene %d = %v outside head range", i, g, v)
			}
		}
	}
}

func TestInitializerSweepLevels(t *testing.T) {
	// A vanishing jitter pins every swept gene to its level.
	init := seeding.Initializer(seeding.Config{SweepFraction: 1, Jitter: 1e-12})
	members, err := init(rand.New(rand.NewSource(1)), 2, testHeads, 5)
	if err != nil {
		t.Fatalf("initializer failed: %v", err)
	}

	wantPairs := []struct{ start, end float64 }{
		{3.6, 0.4},
		{3.05, 0.6},
		{2.5, 0.8},
		{1.95, 1.0},
		{1.4, 1.2},
	}
	for i, want := range wantPairs {
		t.Run(fmt.Sprintf("level %d", i), func(t *testing.T) {
			for seg := 0; seg < 2; seg++ {
				start, end, err := members[i].Pair(seg)
				if err != nil {
					t.Fatalf("pair %d: %v", seg, err)
				}
				if math.Abs(start-want.start) > 1e-9 || math.Abs(end-want.end) > 1e-9 {
					t.Errorf("segment %d = (%v, %v), want (%v, %v)", seg, start, end, want.start, want.end)
				}
				if start <= end {
					t.Errorf("segment %d window closed: start %v, end %v", seg, start, end)
				}
			}
		})
	}

	for i := 1; i < len(wantPairs); i++ {
		prev, cur := wantPairs[i-1], wantPairs[i]
		if cur.start >= prev.start || cur.end <= prev.end {
			t.Errorf("sweep not monotone between levels %d and %d", i-1, i)
		}
		if cur.start-cur.end >= prev.start-prev.end {
			t.Errorf("window does not narrow between levels %d and %d", i-1, i)
		}
	}
}

func TestInitializerBlendsSweptAndRandom(t *testing.T) {
	init := seeding.Initializer(seeding.Config{SweepFraction: 0.5, Jitter: 0.05})
	members, err := init(rand.New(rand.NewSource(3)), 3, testHeads, 20)
	if err != nil {
		t.Fatalf("initializer failed: %v", err)
	}

	// The first half is swept: the most aggressive member starts within
	// one jitter radius of the top anchor.
	jitterRadius := 0.05*testHeads.Span() + 1e-9
	if start, _, _ := members[0].Pair(0); math.Abs(start-3.6) > jitterRadius {
		t.Errorf("aggressive start = %v, want within %v of 3.6", start, jitterRadius)
	}
	if start, _, _ := members[9].Pair(0); math.Abs(start-1.4) > jitterRadius {
		t.Errorf("conservative start = %v, want within %v of 1.4", start, jitterRadius)
	}

	// The second half is uniform random and should cover far more of the
	// range than one jitter radius.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ind := range members[10:] {
		for _, v := range ind.Genes() {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi-lo < 1.0 {
		t.Errorf("random remainder spans only [%v, %v]", lo, hi)
	}
}

func TestInitializerIsReproducible(t *testing.T) {
	cfg := seeding.Config{SweepFraction: 0.4, Jitter: 0.1}

	first, err := seeding.Initializer(cfg)(rand.New(rand.NewSource(11)), 2, testHeads, 10)
	if err != nil {
		t.Fatalf("first draw failed: %v", err)
	}
	second, err := seeding.Initializer(cfg)(rand.New(rand.NewSource(11)), 2, testHeads, 10)
	if err != nil {
		t.Fatalf("second draw failed: %v", err)
	}
	for i := range first {
		a, b := first[i].Genes(), second[i].Genes()
		for g := range a {
			if a[g] != b[g] {
				t.Fatalf("member %d gene %d differs: %v vs %v", i, g, a[g], b[g])
			}
		}
	}

	other, err := seeding.Initializer(cfg)(rand.New(rand.NewSource(12)), 2, testHeads, 10)
	if err != nil {
		t.Fatalf("reseeded draw failed: %v", err)
	}
	same := true
	for i := range first {
		a, b := first[i].Genes(), other[i].Genes()
		for g := range a {
			if a[g] != b[g] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical populations")
	}
}

func TestInitializerRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name     string
		cfg      seeding.Config
		rng      *rand.Rand
		segments int
		n        int
		wantMsg  string
	}{
		{"nil rng", seeding.Config{}, nil, 2, 10, "random source"},
		{"zero population", seeding.Config{}, rng, 2, 0, "population size"},
		{"zero segments", seeding.Config{}, rng, 0, 10, "segment"},
		{"fraction above one", seeding.Config{SweepFraction: 1.5}, rng, 2, 10, "seeding configuration"},
		{"oversized jitter", seeding.Config{Jitter: 0.9}, rng, 2, 10, "seeding configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seeding.Initializer(tt.cfg)(tt.rng, tt.segments, testHeads, tt.n)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestInitializerFeedsTheOptimizer(t *testing.T) {
	eval := func(genes []float64) (float64, float64) {
		energy := 0.0
		for s := 0; s+1 < len(genes); s += 2 {
			if d := genes[s] - genes[s+1]; d > 0 {
				energy += d * 10
			}
		}
		return energy, 5 + 100/(1+energy)
	}

	opt, err := algorithms.New(algorithms.Config{
		PopulationSize:   12,
		MaxGenerations:   3,
		Segments:         2,
		Seed:             5,
		StagnationWindow: 50,
		Initializer:      seeding.Initializer(seeding.Config{}),
	}, eval)
	if err != nil {
		t.Fatalf("optimizer rejected the initializer: %v", err)
	}
	result, err := opt.Optimize(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Final.Size() != 12 {
		t.Errorf("final population holds %d members, want 12", result.Final.Size())
	}
	if result.Generations != 3 {
		t.Errorf("ran %d generations, want 3", result.Generations)
	}
}
