package optimizer

import (
	"fmt"
	"sort"
)

// builtinScenarios builds the ready-made scenarios fresh on every call,
// so callers can mutate what they get back.
func builtinScenarios() map[string]*Args {
	return map[string]*Args{
		// A full spring-neap cycle of the reference plant, the standard
		// sizing study.
		"spring-neap": {
			Name: "spring-neap",
			Seed: 1,
			Tide: TideArgs{Source: "synthetic", Step: 360, Samples: 3546},
			Algorithm: AlgorithmArgs{
				PopulationSize: 100,
				Generations:    150,
			},
		},
		// Two semidiurnal cycles of a lone M2 constituent, small enough
		// for quick runs.
		"m2-day": {
			Name: "m2-day",
			Seed: 1,
			Tide: TideArgs{
				Source:    "synthetic",
				Step:      360,
				Samples:   249,
				Harmonics: []HarmonicArgs{{Amplitude: 2.5, Period: 44714}},
			},
			Algorithm: AlgorithmArgs{
				PopulationSize: 60,
				Generations:    80,
			},
		},
	}
}

// Scenarios lists the built-in scenario names, sorted.
func Scenarios() []string {
	builtin := builtinScenarios()
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scenario returns the named built-in scenario, defaults applied.
func Scenario(name string) (*Args, error) {
	args, ok := builtinScenarios()[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q, have %v", name, Scenarios())
	}
	args.SetDefaults()
	return args, nil
}
