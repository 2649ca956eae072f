package tides

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// stepTolerance is the admissible relative jitter between sample
// timestamps before the series counts as non-uniform.
const stepTolerance = 1e-6

// ParseCSV reads a `time_s,height_m` elevation record. Blank lines and
// lines starting with '#' are skipped, one optional header row is
// tolerated, and the timestamps must be strictly increasing at one uniform
// step. Malformed rows fail with their line number.
func ParseCSV(r io.Reader) (*Series, error) {
	var (
		times   []float64
		heights []float64
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 2 comma-separated fields, got %d", lineNo, len(fields))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			if len(times) == 0 && len(heights) == 0 && lineIsHeader(fields) {
				continue
			}
			return nil, fmt.Errorf("line %d: bad time: %w", lineNo, err)
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad height: %w", lineNo, err)
		}

		if n := len(times); n > 0 && t <= times[n-1] {
			return nil, fmt.Errorf("line %d: time %v does not increase past %v", lineNo, t, times[n-1])
		}
		times = append(times, t)
		heights = append(heights, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading series: %w", err)
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("a series needs at least 2 samples, got %d", len(times))
	}

	step := times[1] - times[0]
	for i := 2; i < len(times); i++ {
		if d := times[i] - times[i-1]; !withinStep(d, step) {
			return nil, fmt.Errorf("non-uniform sampling: step %v between samples %d and %d, want %v", d, i-1, i, step)
		}
	}
	return NewSeries(step, heights)
}

// LoadCSV reads an elevation record from a file.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series: %w", err)
	}
	defer func() { _ = f.Close() }()

	series, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return series, nil
}

// lineIsHeader accepts a leading non-numeric row like `time_s,height_m`.
func lineIsHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
			return false
		}
	}
	return true
}

func withinStep(d, step float64) bool {
	diff := d - step
	if diff < 0 {
		diff = -diff
	}
	return diff <= stepTolerance*step
}
