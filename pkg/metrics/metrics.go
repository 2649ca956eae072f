// Package metrics exposes the optimiser's progress as Prometheus
// collectors: cumulative counters for evaluations, generations and runs,
// and live gauges tracking the front of the last observed generation.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/framework"
)

// Recorder bundles the optimiser's collectors. One recorder serves any
// number of sequential runs against the same registry.
type Recorder struct {
	evaluations prometheus.Counter
	generations prometheus.Counter
	runs        prometheus.Counter
	converged   prometheus.Counter
	frontSize   prometheus.Gauge
	hypervolume prometheus.Gauge
	maxEnergy   prometheus.Gauge
	minUnitCost prometheus.Gauge
}

// NewRecorder builds the collectors and registers them with reg. A
// second recorder on the same registry fails, as the names collide.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barrageopt_evaluations_total",
			Help: "Objective evaluations performed.",
		}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barrageopt_generations_total",
			Help: "Generations the optimiser has completed.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barrageopt_runs_total",
			Help: "Optimisation runs started.",
		}),
		converged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barrageopt_runs_converged_total",
			Help: "Runs that stopped on convergence rather than the generation cap.",
		}),
		frontSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barrageopt_front_size",
			Help: "Pareto front size of the last observed generation.",
		}),
		hypervolume: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barrageopt_hypervolume",
			Help: "Hypervolume of the last observed generation.",
		}),
		maxEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barrageopt_max_energy_mwh",
			Help: "Best annual energy yield in the last observed generation.",
		}),
		minUnitCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barrageopt_min_unit_cost",
			Help: "Lowest valid unit cost in the last observed generation.",
		}),
	}
	for _, c := range []prometheus.Collector{
		r.evaluations, r.generations, r.runs, r.converged,
		r.frontSize, r.hypervolume, r.maxEnergy, r.minUnitCost,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collectors: %w", err)
		}
	}
	return r, nil
}

// ObserveGeneration feeds one generation record into the collectors.
// Wire it into the optimiser's OnGeneration hook; the baseline record
// counts as a run start, not a completed generation.
func (r *Recorder) ObserveGeneration(rec algorithms.GenerationRecord) {
	if rec.Generation == 0 {
		r.runs.Inc()
	} else {
		r.generations.Inc()
	}
	r.frontSize.Set(float64(rec.ParetoSize))
	r.hypervolume.Set(rec.Hypervolume)
	r.maxEnergy.Set(rec.Population.MaxEnergy)
	r.minUnitCost.Set(rec.Population.MinUnitCost)
}

// ObserveResult counts a finished run's terminal verdict.
func (r *Recorder) ObserveResult(res *algorithms.Result) {
	if res != nil && res.Converged {
		r.converged.Inc()
	}
}

// InstrumentEvaluator wraps an evaluator so every call bumps the
// evaluation counter. The wrapper is as concurrency-safe as the
// evaluator it wraps.
func (r *Recorder) InstrumentEvaluator(eval framework.EvaluateFunc) framework.EvaluateFunc {
	return func(genes []float64) (float64, float64) {
		r.evaluations.Inc()
		return eval(genes)
	}
}

// Handler serves a registry in the standard exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
