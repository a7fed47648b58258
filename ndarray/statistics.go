package ndarray

import (
	"fmt"
	"math"
)

// DefaultHistogramBins is the histogram resolution used by [Computer].
const DefaultHistogramBins = 1024

// Statistics summarizes the values of one array component.
type Statistics struct {
	Min, Max float64
	// Histogram counts finite values in equally sized bins spanning [Min, Max].
	Histogram []uint64
	// HistogramMax is the largest bin count, cached for plotting.
	HistogramMax uint64
	// Finite is the number of values that are neither NaN nor infinite.
	Finite int
}

// StatisticsProvider computes statistics of a single component of an array.
type StatisticsProvider interface {
	Statistics(a *Array, component int) (Statistics, error)
}

// Computer is the reference [StatisticsProvider]. It scans the whole array.
type Computer struct {
	// Bins is the histogram resolution. Zero selects [DefaultHistogramBins].
	Bins int
}

// Statistics implements [StatisticsProvider].
func (c Computer) Statistics(a *Array, component int) (Statistics, error) {
	return ComputeStatistics(a, component, c.Bins)
}

// ComputeStatistics scans component of a and returns its range and a histogram with
// the given number of bins. NaN and infinite values are not counted.
func ComputeStatistics(a *Array, component, bins int) (Statistics, error) {
	if err := a.Validate(); err != nil {
		return Statistics{}, err
	}
	if component < 0 || component >= a.Header.Components {
		return Statistics{}, fmt.Errorf("component %d out of range [0,%d)", component, a.Header.Components)
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	n := a.Header.ElementCount()
	st := Statistics{Min: math.Inf(1), Max: math.Inf(-1), Histogram: make([]uint64, bins)}
	for i := 0; i < n; i++ {
		v := a.Float64At(i, component)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		st.Finite++
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	if st.Finite == 0 {
		st.Min, st.Max = 0, 0
		return st, nil
	}
	width := st.Max - st.Min
	for i := 0; i < n; i++ {
		v := a.Float64At(i, component)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bin := 0
		if width > 0 {
			bin = min(int((v-st.Min)/width*float64(bins)), bins-1)
		}
		st.Histogram[bin]++
		st.HistogramMax = max(st.HistogramMax, st.Histogram[bin])
	}
	return st, nil
}

// AllStatistics computes statistics for every component of a with provider p.
func AllStatistics(p StatisticsProvider, a *Array) ([]Statistics, error) {
	stats := make([]Statistics, a.Header.Components)
	for i := range stats {
		var err error
		stats[i], err = p.Statistics(a, i)
		if err != nil {
			return nil, fmt.Errorf("component %d statistics: %w", i, err)
		}
	}
	return stats, nil
}
