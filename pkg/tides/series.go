// Package tides models sampled sea-surface elevation series and their
// half-tide structure: the alternating ebb and flood windows between
// successive high- and low-water events that a barrage operating strategy
// is phrased over.
package tides

import (
	"fmt"
	"math"
)

// Series is a uniformly sampled sea-surface elevation record. Heights are
// metres relative to mean sea level, the step is seconds. The value is
// immutable after construction.
type Series struct {
	step    float64
	heights []float64
}

// NewSeries validates and copies the samples into a series.
func NewSeries(step float64, heights []float64) (*Series, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return nil, fmt.Errorf("sample step must be a positive number of seconds, got %v", step)
	}
	if len(heights) < 2 {
		return nil, fmt.Errorf("a series needs at least 2 samples, got %d", len(heights))
	}
	for i, h := range heights {
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("sample %d is not a finite height: %v", i, h)
		}
	}
	return &Series{
		step:    step,
		heights: append([]float64(nil), heights...),
	}, nil
}

// Step returns the sampling interval in seconds.
func (s *Series) Step() float64 {
	return s.step
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.heights)
}

// Duration returns the covered time span in seconds.
func (s *Series) Duration() float64 {
	return s.step * float64(len(s.heights)-1)
}

// Height returns the sample at index i.
func (s *Series) Height(i int) (float64, error) {
	if i < 0 || i >= len(s.heights) {
		return 0, fmt.Errorf("sample index %d outside series of %d samples", i, len(s.heights))
	}
	return s.heights[i], nil
}

// Heights returns a copy of all samples.
func (s *Series) Heights() []float64 {
	return append([]float64(nil), s.heights...)
}

// At linearly interpolates the elevation at time t seconds from the first
// sample. Times outside the series fail.
func (s *Series) At(t float64) (float64, error) {
	if math.IsNaN(t) || t < 0 || t > s.Duration() {
		return 0, fmt.Errorf("time %vs outside series spanning %vs", t, s.Duration())
	}
	pos := t / s.step
	i := int(pos)
	if i >= len(s.heights)-1 {
		return s.heights[len(s.heights)-1], nil
	}
	frac := pos - float64(i)
	return s.heights[i]*(1-frac) + s.heights[i+1]*frac, nil
}

// Range returns the lowest and highest elevation in the series.
func (s *Series) Range() (min, max float64) {
	min, max = s.heights[0], s.heights[0]
	for _, h := range s.heights[1:] {
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	return min, max
}

// Segment is one half tide: the samples between two successive water-level
// turning points, both indices inclusive.
type Segment struct {
	Start int
	End   int
	// Ebb marks a falling (high-to-low-water) half tide.
	Ebb bool
}

// Samples returns the number of samples the segment spans.
func (g Segment) Samples() int {
	return g.End - g.Start + 1
}

// Segments splits the series at its high- and low-water events into
// half-tide windows. Plateaus extend the running trend, so a flat crest
// turns exactly once, at its end. A series without any turning point comes
// back as a single segment.
func (s *Series) Segments() []Segment {
	turns := s.turningPoints()

	bounds := make([]int, 0, len(turns)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, turns...)
	if last := len(s.heights) - 1; bounds[len(bounds)-1] != last {
		bounds = append(bounds, last)
	}

	segments := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		a, b := bounds[i], bounds[i+1]
		segments = append(segments, Segment{
			Start: a,
			End:   b,
			Ebb:   s.heights[b] < s.heights[a],
		})
	}
	return segments
}

// turningPoints returns the interior sample indices where the water level
// changes direction.
func (s *Series) turningPoints() []int {
	var turns []int
	trend := 0
	for i := 1; i < len(s.heights); i++ {
		d := s.heights[i] - s.heights[i-1]
		if d == 0 {
			continue
		}
		dir := 1
		if d < 0 {
			dir = -1
		}
		if trend != 0 && dir != trend {
			turns = append(turns, i-1)
		}
		trend = dir
	}
	return turns
}
