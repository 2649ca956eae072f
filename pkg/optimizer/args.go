package optimizer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/barrageopt/barrageopt/pkg/algorithms"
	"github.com/barrageopt/barrageopt/pkg/analysis"
	"github.com/barrageopt/barrageopt/pkg/framework"
	"github.com/barrageopt/barrageopt/pkg/objectives/barrage"
	"github.com/barrageopt/barrageopt/pkg/seeding"
	"github.com/barrageopt/barrageopt/pkg/tides"
)

var validate = validator.New()

// Args is a complete scenario: the tide record to optimise against, the
// plant being operated, and every tunable of the optimisation itself.
// Zero fields get the standard defaults from SetDefaults.
type Args struct {
	// Name labels the scenario in logs and reports.
	Name string `yaml:"name" validate:"required"`
	// Seed makes the run reproducible; 0 seeds from the wall clock.
	Seed      uint64        `yaml:"seed,omitempty"`
	Tide      TideArgs      `yaml:"tide"`
	Plant     PlantArgs     `yaml:"plant"`
	Algorithm AlgorithmArgs `yaml:"algorithm"`
	Seeding   SeedingArgs   `yaml:"seeding"`
	Analysis  AnalysisArgs  `yaml:"analysis"`
}

// TideArgs selects the tide record a scenario runs against.
type TideArgs struct {
	// Source is either "synthetic" or "csv".
	Source string `yaml:"source" validate:"oneof=synthetic csv"`
	// CSV is the record file; required when Source is "csv".
	CSV string `yaml:"csv,omitempty" validate:"required_if=Source csv"`
	// Step and Samples size a synthetic record.
	Step    float64 `yaml:"step" validate:"gt=0"`
	Samples int     `yaml:"samples" validate:"gte=2"`
	// Harmonics overrides the standard spring-neap constituents.
	Harmonics []HarmonicArgs `yaml:"harmonics,omitempty" validate:"omitempty,dive"`
}

// HarmonicArgs is one tidal constituent of a synthetic record.
type HarmonicArgs struct {
	Amplitude float64 `yaml:"amplitude" validate:"gte=0"`
	Period    float64 `yaml:"period" validate:"gt=0"`
	Phase     float64 `yaml:"phase,omitempty"`
}

// PlantArgs mirrors the barrage plant parameters; zero fields fall back
// to the reference plant.
type PlantArgs struct {
	BasinArea      float64 `yaml:"basinArea" validate:"gte=0"`
	TurbineArea    float64 `yaml:"turbineArea" validate:"gte=0"`
	SluiceArea     float64 `yaml:"sluiceArea" validate:"gte=0"`
	DischargeCoeff float64 `yaml:"dischargeCoeff" validate:"gte=0,lte=1"`
	Efficiency     float64 `yaml:"efficiency" validate:"gte=0,lte=1"`
	RatedPower     float64 `yaml:"ratedPower" validate:"gte=0"`
	CapitalCost    float64 `yaml:"capitalCost" validate:"gte=0"`
	FixedOM        float64 `yaml:"fixedOM" validate:"gte=0"`
	DiscountRate   float64 `yaml:"discountRate" validate:"gte=0,lt=1"`
	Lifetime       int     `yaml:"lifetime" validate:"gte=0"`
}

// AlgorithmArgs carries the optimiser tunables. Segment count is not
// here: the tide record fixes it at run time.
type AlgorithmArgs struct {
	PopulationSize       int       `yaml:"populationSize" validate:"omitempty,gte=4"`
	Generations          int       `yaml:"generations" validate:"gte=0"`
	CrossoverProbability float64   `yaml:"crossoverProbability" validate:"gte=0,lte=1"`
	MutationProbability  float64   `yaml:"mutationProbability" validate:"gte=0,lte=1"`
	Crossover            string    `yaml:"crossover,omitempty" validate:"omitempty,oneof=sbx uniform segment-pair"`
	Mutation             string    `yaml:"mutation,omitempty" validate:"omitempty,oneof=polynomial gaussian operational"`
	CrossoverEta         float64   `yaml:"crossoverEta" validate:"gte=0"`
	MutationEta          float64   `yaml:"mutationEta" validate:"gte=0"`
	GaussianSigma        float64   `yaml:"gaussianSigma" validate:"gte=0"`
	OperationalShift     float64   `yaml:"operationalShift" validate:"gte=0"`
	Epsilon              float64   `yaml:"epsilon" validate:"gte=0"`
	StagnationWindow     int       `yaml:"stagnationWindow" validate:"gte=0"`
	Heads                HeadsArgs `yaml:"heads"`
	Workers              int       `yaml:"workers" validate:"gte=0"`
}

// HeadsArgs is the admissible head interval.
type HeadsArgs struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// SeedingArgs tunes the heuristic initial population. Seeding is on by
// default; Disabled falls back to a uniform random start.
type SeedingArgs struct {
	Disabled      bool    `yaml:"disabled,omitempty"`
	SweepFraction float64 `yaml:"sweepFraction" validate:"gte=0,lte=1"`
	Jitter        float64 `yaml:"jitter" validate:"gte=0,lte=0.5"`
}

// AnalysisArgs shapes the report built from the final front.
type AnalysisArgs struct {
	EnergyWeight float64 `yaml:"energyWeight" validate:"gte=0"`
	CostWeight   float64 `yaml:"costWeight" validate:"gte=0"`
	// MinDepth is the feasibility floor on each segment's generation
	// window, in metres of head.
	MinDepth float64 `yaml:"minDepth" validate:"gte=0"`
}

// SetDefaults fills zero fields with the standard scenario tuning.
// Algorithm and plant zeros are left in place; their own SetDefaults
// complete them when the scenario runs.
func (a *Args) SetDefaults() {
	if a.Tide.Source == "" {
		a.Tide.Source = "synthetic"
	}
	if a.Tide.Step == 0 {
		a.Tide.Step = 360
	}
	if a.Tide.Samples == 0 {
		a.Tide.Samples = 3546
	}
	if a.Analysis.EnergyWeight == 0 && a.Analysis.CostWeight == 0 {
		a.Analysis.EnergyWeight = 0.5
		a.Analysis.CostWeight = 0.5
	}
	if a.Analysis.MinDepth == 0 {
		a.Analysis.MinDepth = 0.5
	}
}

// Validate checks the scenario field by field, then cross-checks the
// domain configurations it maps onto.
func (a *Args) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("scenario %q: %w", a.Name, err)
	}

	plant := a.Plant.toPlant()
	if err := plant.Validate(); err != nil {
		return fmt.Errorf("scenario %q plant: %w", a.Name, err)
	}

	// Segment count comes from the tide record at run time; a
	// placeholder keeps the remaining checks honest.
	cfg := a.Algorithm.toConfig()
	cfg.Segments = 1
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scenario %q algorithm: %w", a.Name, err)
	}

	if err := a.seedingConfig().Validate(); err != nil {
		return fmt.Errorf("scenario %q seeding: %w", a.Name, err)
	}
	if err := a.weights().Validate(); err != nil {
		return fmt.Errorf("scenario %q analysis: %w", a.Name, err)
	}
	return nil
}

// LoadArgs reads a scenario file, applies defaults and validates.
// Unknown YAML keys are rejected, so typos fail loudly.
func LoadArgs(path string) (*Args, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	args := &Args{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(args); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	args.SetDefaults()
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

func (p PlantArgs) toPlant() barrage.Plant {
	plant := barrage.Plant{
		BasinArea:      p.BasinArea,
		TurbineArea:    p.TurbineArea,
		SluiceArea:     p.SluiceArea,
		DischargeCoeff: p.DischargeCoeff,
		Efficiency:     p.Efficiency,
		RatedPower:     p.RatedPower,
		CapitalCost:    p.CapitalCost,
		FixedOM:        p.FixedOM,
		DiscountRate:   p.DiscountRate,
		Lifetime:       p.Lifetime,
	}
	plant.SetDefaults()
	return plant
}

func (a AlgorithmArgs) toConfig() algorithms.Config {
	return algorithms.Config{
		PopulationSize:       a.PopulationSize,
		MaxGenerations:       a.Generations,
		CrossoverProbability: a.CrossoverProbability,
		MutationProbability:  a.MutationProbability,
		Crossover:            algorithms.CrossoverType(a.Crossover),
		Mutation:             algorithms.MutationType(a.Mutation),
		Operator: algorithms.OperatorConfig{
			CrossoverEta:     a.CrossoverEta,
			MutationEta:      a.MutationEta,
			GaussianSigma:    a.GaussianSigma,
			OperationalShift: a.OperationalShift,
		},
		Epsilon:          a.Epsilon,
		StagnationWindow: a.StagnationWindow,
		Heads:            framework.HeadRange{Min: a.Heads.Min, Max: a.Heads.Max},
		Workers:          a.Workers,
	}
}

func (a *Args) seedingConfig() seeding.Config {
	cfg := seeding.Config{
		SweepFraction: a.Seeding.SweepFraction,
		Jitter:        a.Seeding.Jitter,
	}
	cfg.SetDefaults()
	return cfg
}

func (a *Args) weights() analysis.Weights {
	return analysis.Weights{Energy: a.Analysis.EnergyWeight, Cost: a.Analysis.CostWeight}
}

// buildSeries turns the tide arguments into a concrete record.
func buildSeries(t TideArgs) (*tides.Series, error) {
	switch t.Source {
	case "csv":
		return tides.LoadCSV(t.CSV)
	case "synthetic":
		if len(t.Harmonics) == 0 {
			return tides.SpringNeap(t.Step, t.Samples)
		}
		components := make([]tides.Harmonic, len(t.Harmonics))
		for i, h := range t.Harmonics {
			components[i] = tides.Harmonic{
				Amplitude: h.Amplitude,
				Period:    h.Period,
				Phase:     h.Phase,
			}
		}
		return tides.Synthesize(t.Step, t.Samples, components...)
	default:
		return nil, fmt.Errorf("unknown tide source %q", t.Source)
	}
}
