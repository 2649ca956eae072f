// Package analysis turns a final Pareto front into a decision aid: a
// ranked reading of the trade-off under explicit objective weights, a
// sensitivity sweep showing how the recommendation moves as the
// weighting moves, and per-solution operating detail when an evaluator
// is available to explain the strategies.
package analysis

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/objectives/barrage"
)

// Weights balances the two objectives when collapsing the front to one
// recommendation. They need not sum to one; scoring normalises them.
type Weights struct {
	Energy float64
	Cost   float64
}

// Validate rejects weightings that cannot rank anything.
func (w Weights) Validate() error {
	if math.IsNaN(w.Energy) || math.IsNaN(w.Cost) || w.Energy < 0 || w.Cost < 0 {
		return fmt.Errorf("weights must be non-negative, got energy %v and cost %v", w.Energy, w.Cost)
	}
	if w.Energy+w.Cost == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

func (w Weights) normalised() Weights {
	sum := w.Energy + w.Cost
	return Weights{Energy: w.Energy / sum, Cost: w.Cost / sum}
}

// DefaultSensitivity spans energy-focused to cost-focused weightings.
var DefaultSensitivity = []Weights{
	{Energy: 0.9, Cost: 0.1},
	{Energy: 0.7, Cost: 0.3},
	{Energy: 0.5, Cost: 0.5},
	{Energy: 0.3, Cost: 0.7},
	{Energy: 0.1, Cost: 0.9},
}

// Score carries one objective's raw value and its share of a solution's
// weighted total. Normalisation is against the front's own extremes, so
// scores compare only within one report.
type Score struct {
	Raw        float64
	Normalized float64
	Weighted   float64
}

// Solution is one front member unpacked for reporting.
type Solution struct {
	// Position is the member's index in the front that was analysed.
	Position int
	Strategy []float64
	Energy   Score
	Cost     Score
	// WeightedTotal ranks the solution under the report's weights;
	// higher is better.
	WeightedTotal float64
	// Feasible reports whether the strategy passed the operating
	// constraint, or true when no constraint was given.
	Feasible bool
	// CapacityFactor and Schedule are filled when an evaluator is
	// available to explain the strategy.
	CapacityFactor float64
	Schedule       []barrage.SegmentYield
}

// Shift is one sensitivity entry: which solution wins under an
// alternative weighting.
type Shift struct {
	Weights  Weights
	Winner   int
	Energy   float64
	UnitCost float64
}

// Config shapes a report. Everything except the front is optional.
type Config struct {
	// Weights ranks the front; the zero value means an even split.
	Weights Weights
	// Evaluator, when set, adds per-segment schedules and capacity
	// factors to every solution.
	Evaluator *barrage.Evaluator
	// Feasibility, when set, flags solutions that violate it.
	Feasibility barrage.Constraint
	// Sensitivity weightings for the sweep; nil uses DefaultSensitivity.
	Sensitivity []Weights
}

// Report is a ranked reading of one Pareto front.
type Report struct {
	Weights     Weights
	Solutions   []Solution
	Sensitivity []Shift
}

// Analyze ranks a front under the configured weights and runs the
// sensitivity sweep. The front is read, never modified.
func Analyze(front []*algorithms.Individual, cfg Config) (*Report, error) {
	if len(front) == 0 {
		return nil, fmt.Errorf("cannot analyse an empty front")
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = Weights{Energy: 0.5, Cost: 0.5}
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	sweeps := cfg.Sensitivity
	if sweeps == nil {
		sweeps = DefaultSensitivity
	}

	sols := make([]Solution, len(front))
	for i, ind := range front {
		if ind == nil {
			return nil, fmt.Errorf("front member %d is nil", i)
		}
		sol := Solution{
			Position: i,
			Strategy: ind.Genes(),
			Energy:   Score{Raw: ind.Energy()},
			Cost:     Score{Raw: ind.UnitCost()},
			Feasible: true,
		}
		if cfg.Feasibility != nil {
			sol.Feasible = cfg.Feasibility(sol.Strategy)
		}
		if cfg.Evaluator != nil {
			bd, err := cfg.Evaluator.Breakdown(sol.Strategy)
			if err != nil {
				return nil, fmt.Errorf("breakdown of front member %d: %w", i, err)
			}
			sol.CapacityFactor = bd.CapacityFactor
			sol.Schedule = bd.Segments
		}
		sols[i] = sol
	}

	scoreSolutions(sols, cfg.Weights)

	report := &Report{Weights: cfg.Weights.normalised()}
	for _, w := range sweeps {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("sensitivity weighting: %w", err)
		}
		report.Sensitivity = append(report.Sensitivity, bestUnder(sols, w))
	}

	ranked := make([]Solution, len(sols))
	copy(ranked, sols)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WeightedTotal > ranked[j].WeightedTotal
	})
	report.Solutions = ranked
	return report, nil
}

// scoreSolutions fills the normalised and weighted fields in place.
// Energy counts up from the front's minimum; cost counts down from its
// maximum valid value, with invalid costs pinned to zero.
func scoreSolutions(sols []Solution, w Weights) {
	w = w.normalised()
	minE, maxE := math.Inf(1), math.Inf(-1)
	minC, maxC := math.Inf(1), math.Inf(-1)
	for _, s := range sols {
		minE = math.Min(minE, s.Energy.Raw)
		maxE = math.Max(maxE, s.Energy.Raw)
		if framework.IsValidCost(s.Cost.Raw) {
			minC = math.Min(minC, s.Cost.Raw)
			maxC = math.Max(maxC, s.Cost.Raw)
		}
	}
	for i := range sols {
		s := &sols[i]
		s.Energy.Normalized = unitScale(s.Energy.Raw, minE, maxE)
		s.Energy.Weighted = w.Energy * s.Energy.Normalized
		if framework.IsValidCost(s.Cost.Raw) {
			s.Cost.Normalized = unitScale(maxC-s.Cost.Raw, 0, maxC-minC)
			s.Cost.Weighted = w.Cost * s.Cost.Normalized
		}
		s.WeightedTotal = s.Energy.Weighted + s.Cost.Weighted
	}
}

// unitScale maps v onto [0, 1] within [lo, hi]; a collapsed interval
// scores full marks.
func unitScale(v, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}

// bestUnder recomputes the weighted totals under an alternative
// weighting and reports the winner. Ties keep the earliest member.
func bestUnder(sols []Solution, w Weights) Shift {
	w = w.normalised()
	best, bestTotal := 0, math.Inf(-1)
	for i, s := range sols {
		total := w.Energy*s.Energy.Normalized + w.Cost*s.Cost.Normalized
		if total > bestTotal {
			best, bestTotal = i, total
		}
	}
	return Shift{
		Weights:  w,
		Winner:   sols[best].Position,
		Energy:   sols[best].Energy.Raw,
		UnitCost: sols[best].Cost.Raw,
	}
}

// Render writes the report as aligned text: the ranked front first, then
// the sensitivity sweep.
func (r *Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "weights: energy %.2f, cost %.2f\n\n", r.Weights.Energy, r.Weights.Cost)
	fmt.Fprintln(tw, "rank\tsolution\tenergy (MWh/yr)\tunit cost\tscore\tcapacity\tfeasible")
	for i, s := range r.Solutions {
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%s\t%.4f\t%.3f\t%v\n",
			i+1, s.Position, s.Energy.Raw, costLabel(s.Cost.Raw), s.WeightedTotal, s.CapacityFactor, s.Feasible)
	}
	if len(r.Sensitivity) > 0 {
		fmt.Fprintln(tw, "\nsensitivity:")
		for _, sh := range r.Sensitivity {
			fmt.Fprintf(tw, "energy %.0f%% / cost %.0f%%\tsolution %d\t%.1f MWh/yr\tcost %s\n",
				sh.Weights.Energy*100, sh.Weights.Cost*100, sh.Winner, sh.Energy, costLabel(sh.UnitCost))
		}
	}
	return tw.Flush()
}

// RenderSchedule writes one solution's operating detail. Without an
// evaluator's schedule it falls back to the raw threshold pairs.
func RenderSchedule(w io.Writer, s Solution) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "solution %d: %.1f MWh/yr, cost %s, capacity %.3f\n\n",
		s.Position, s.Energy.Raw, costLabel(s.Cost.Raw), s.CapacityFactor)
	if len(s.Schedule) == 0 {
		fmt.Fprintln(tw, "segment\tstart head\tend head")
		for seg := 0; seg+1 < len(s.Strategy); seg += 2 {
			fmt.Fprintf(tw, "%d\t%.2f\t%.2f\n", seg/2, s.Strategy[seg], s.Strategy[seg+1])
		}
		return tw.Flush()
	}
	fmt.Fprintln(tw, "segment\ttide\tstart head\tend head\tenergy (MWh)\tgenerating (h)")
	for _, seg := range s.Schedule {
		tide := "flood"
		if seg.Ebb {
			tide = "ebb"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\t%.1f\n",
			seg.Segment, tide, seg.StartHead, seg.EndHead, seg.EnergyMWh, seg.GeneratingHours)
	}
	return tw.Flush()
}

func costLabel(c float64) string {
	if !framework.IsValidCost(c) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", c)
}
