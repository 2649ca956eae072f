package tides

import (
	"fmt"
	"math"
)

// Principal semidiurnal constituents of a typical macro-tidal site. The
// M2/S2 beat produces the fortnightly spring-neap envelope.
const (
	// M2Period is the principal lunar semidiurnal period in seconds.
	M2Period = 44714.0
	// S2Period is the principal solar semidiurnal period in seconds.
	S2Period = 43200.0
	// M2Amplitude is the default lunar amplitude in metres.
	M2Amplitude = 2.5
	// S2Amplitude is the default solar amplitude in metres.
	S2Amplitude = 0.8
)

// Harmonic is one cosine constituent of a synthetic tide.
type Harmonic struct {
	// Amplitude in metres.
	Amplitude float64
	// Period in seconds.
	Period float64
	// Phase in radians.
	Phase float64
}

// Synthesize samples the sum of the given constituents: n samples, one
// every step seconds, starting at t = 0.
func Synthesize(step float64, n int, components ...Harmonic) (*Series, error) {
	if n < 2 {
		return nil, fmt.Errorf("a series needs at least 2 samples, got %d", n)
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("synthesis needs at least one constituent")
	}
	for i, c := range components {
		if math.IsNaN(c.Amplitude) || c.Amplitude < 0 {
			return nil, fmt.Errorf("constituent %d: amplitude must be non-negative, got %v", i, c.Amplitude)
		}
		if math.IsNaN(c.Period) || c.Period <= 0 {
			return nil, fmt.Errorf("constituent %d: period must be positive, got %v", i, c.Period)
		}
	}

	heights := make([]float64, n)
	for i := range heights {
		t := float64(i) * step
		h := 0.0
		for _, c := range components {
			h += c.Amplitude * math.Cos(2*math.Pi*t/c.Period-c.Phase)
		}
		heights[i] = h
	}
	return NewSeries(step, heights)
}

// SpringNeap synthesises the default M2+S2 tide: a semidiurnal signal
// whose range swells and shrinks over the fortnightly cycle.
func SpringNeap(step float64, n int) (*Series, error) {
	return Synthesize(step, n,
		Harmonic{Amplitude: M2Amplitude, Period: M2Period},
		Harmonic{Amplitude: S2Amplitude, Period: S2Period},
	)
}
