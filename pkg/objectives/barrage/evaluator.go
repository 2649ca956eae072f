package barrage

import (
	"fmt"
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/tides"
)

// operating phases of one half-tide segment.
type phase int

const (
	// phaseHolding keeps the basin sealed while the tide moves away and
	// the head builds toward the strategy's start threshold.
	phaseHolding phase = iota
	// phaseGenerating runs the turbines until the head decays to the
	// strategy's end threshold.
	phaseGenerating
	// phaseSluicing opens the gates to drag the basin back to sea level
	// before the next half tide.
	phaseSluicing
)

// pair is one segment's operating window.
type pair struct {
	start float64
	end   float64
}

// Evaluator scores operating strategies against one tide record and one
// plant. It is pure and safe for concurrent use: Evaluate touches only
// local state.
type Evaluator struct {
	plant   Plant
	series  *tides.Series
	segs    []tides.Segment
	heights []float64
}

// NewEvaluator binds a plant to a tide record and precomputes the
// record's half-tide segmentation.
func NewEvaluator(plant Plant, series *tides.Series) (*Evaluator, error) {
	if err := plant.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plant: %w", err)
	}
	if series == nil {
		return nil, fmt.Errorf("evaluator needs a tide series")
	}
	return &Evaluator{
		plant:   plant,
		series:  series,
		segs:    series.Segments(),
		heights: series.Heights(),
	}, nil
}

// Plant returns the bound plant description.
func (e *Evaluator) Plant() Plant {
	return e.plant
}

// Segments returns the number of half-tide windows in the bound record:
// the natural strategy length.
func (e *Evaluator) Segments() int {
	return len(e.segs)
}

// Evaluate scores one strategy. The gene vector holds (startHead,
// endHead) pairs consumed per half tide in order, repeating cyclically
// when the record outlasts the strategy, so a single pair acts as a fixed
// threshold policy. Malformed vectors (empty, odd, non-finite) score zero
// energy at the invalid cost.
func (e *Evaluator) Evaluate(strategy []float64) (energy, unitCost float64) {
	pairs, ok := pairsOf(strategy)
	if !ok {
		return 0, framework.InvalidCost
	}
	annualMWh := e.annualise(e.simulate(pairs, nil))
	return annualMWh, e.plant.UnitCost(annualMWh)
}

// SegmentYield is one half tide's share of a strategy's output.
type SegmentYield struct {
	Segment int
	Ebb     bool
	// StartHead and EndHead are the thresholds the segment ran under.
	StartHead float64
	EndHead   float64
	// EnergyMWh is the yield over the simulated half tide, not annualised.
	EnergyMWh float64
	// GeneratingHours is how long the turbines ran.
	GeneratingHours float64
}

// Breakdown is the detailed score of one strategy.
type Breakdown struct {
	AnnualMWh      float64
	UnitCost       float64
	CapacityFactor float64
	Segments       []SegmentYield
}

// Breakdown rescores a strategy keeping the per-segment detail. It is
// meant for reporting on final solutions, not for the optimisation loop.
func (e *Evaluator) Breakdown(strategy []float64) (*Breakdown, error) {
	pairs, ok := pairsOf(strategy)
	if !ok {
		return nil, fmt.Errorf("strategy must hold non-empty finite (start, end) pairs, got %d genes", len(strategy))
	}

	yields := make([]SegmentYield, 0, len(e.segs))
	joules := e.simulate(pairs, func(seg int, ebb bool, p pair, energyJ, genSeconds float64) {
		yields = append(yields, SegmentYield{
			Segment:         seg,
			Ebb:             ebb,
			StartHead:       p.start,
			EndHead:         p.end,
			EnergyMWh:       energyJ / joulesPerMWh,
			GeneratingHours: genSeconds / 3600,
		})
	})

	annualMWh := e.annualise(joules)
	ratedAnnualMWh := e.plant.RatedPower * secondsPerYear / joulesPerMWh
	return &Breakdown{
		AnnualMWh:      annualMWh,
		UnitCost:       e.plant.UnitCost(annualMWh),
		CapacityFactor: annualMWh / ratedAnnualMWh,
		Segments:       yields,
	}, nil
}

// simulate walks the record once: per half tide the basin is held until
// the head reaches the segment's start threshold, generates until it
// decays to the end threshold, then sluices back toward sea level. The
// basin carries over between segments, so a strategy that never acts
// leaves it wherever the last action put it. Returns joules.
func (e *Evaluator) simulate(pairs []pair, collect func(seg int, ebb bool, p pair, energyJ, genSeconds float64)) float64 {
	dt := e.series.Step()
	zb := e.heights[0]
	total := 0.0

	for k, seg := range e.segs {
		p := pairs[k%len(pairs)]
		st := phaseHolding
		segEnergy, genSeconds := 0.0, 0.0

		for i := seg.Start; i < seg.End; i++ {
			zs := e.heights[i]
			hd := zb - zs
			if !seg.Ebb {
				hd = -hd
			}

			switch st {
			case phaseHolding:
				if hd >= p.start {
					st = phaseGenerating
				}
			case phaseGenerating:
				if hd <= p.end {
					st = phaseSluicing
				}
			}

			switch st {
			case phaseGenerating:
				if hd <= 0 {
					continue
				}
				q := e.plant.DischargeCoeff * e.plant.TurbineArea * math.Sqrt(2*gravity*hd)
				dz := q * dt / e.plant.BasinArea
				if dz > hd {
					// The basin would cross sea level inside the step.
					dz = hd
					q = dz * e.plant.BasinArea / dt
				}
				power := e.plant.Efficiency * seawaterDensity * gravity * q * hd
				if power > e.plant.RatedPower {
					power = e.plant.RatedPower
				}
				segEnergy += power * dt
				genSeconds += dt
				if seg.Ebb {
					zb -= dz
				} else {
					zb += dz
				}
			case phaseSluicing:
				zb = e.sluiceToward(zb, zs, dt)
			}
		}

		total += segEnergy
		if collect != nil {
			collect(k, seg.Ebb, p, segEnergy, genSeconds)
		}
	}
	return total
}

// sluiceToward moves the basin level toward the sea through the sluice
// gates, never past it within one step.
func (e *Evaluator) sluiceToward(zb, zs, dt float64) float64 {
	h := zb - zs
	if h == 0 {
		return zb
	}
	mag := math.Abs(h)
	q := e.plant.DischargeCoeff * e.plant.SluiceArea * math.Sqrt(2*gravity*mag)
	dz := q * dt / e.plant.BasinArea
	if dz > mag {
		dz = mag
	}
	if h > 0 {
		return zb - dz
	}
	return zb + dz
}

// annualise scales the simulated yield to a year and converts to MWh.
func (e *Evaluator) annualise(joules float64) float64 {
	return joules / joulesPerMWh * secondsPerYear / e.series.Duration()
}

// pairsOf validates and regroups a gene vector into operating windows.
func pairsOf(strategy []float64) ([]pair, bool) {
	if len(strategy) == 0 || len(strategy)%2 != 0 {
		return nil, false
	}
	pairs := make([]pair, 0, len(strategy)/2)
	for i := 0; i < len(strategy); i += 2 {
		s, t := strategy[i], strategy[i+1]
		if math.IsNaN(s) || math.IsInf(s, 0) || math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, false
		}
		pairs = append(pairs, pair{start: s, end: t})
	}
	return pairs, true
}
