package main

import (
	"sort"
	"sync"
	"time"

	"github.com/mtraver/lps2x/measurement"
)

type Stats struct {
	Min    float32
	Max    float32
	Mean   float32
	StdDev float32
}

// history keeps the measurements taken within the last window.
type history struct {
	window time.Duration

	mu           sync.Mutex
	measurements []measurement.StorableMeasurement
}

func newHistory(window time.Duration) *history {
	return &history{window: window}
}

func (h *history) add(m measurement.StorableMeasurement) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.measurements = append(h.measurements, m)
	h.trim(m.Timestamp)
}

// trim drops measurements older than window before now. Measurements are
// appended in time order, so the expired ones are a prefix.
func (h *history) trim(now time.Time) {
	cutoff := now.Add(-h.window)
	i := sort.Search(len(h.measurements), func(i int) bool {
		return h.measurements[i].Timestamp.After(cutoff)
	})
	h.measurements = append([]measurement.StorableMeasurement(nil), h.measurements[i:]...)
}

func (h *history) snapshot() []measurement.StorableMeasurement {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]measurement.StorableMeasurement(nil), h.measurements...)
}

// summaryStats returns stats for each value present in the measurements,
// keyed as in measurement.StorableMeasurement.ValueMap.
func summaryStats(measurements []measurement.StorableMeasurement) map[string]Stats {
	mins := measurement.Min(measurements)
	maxs := measurement.Max(measurements)
	mean := measurement.Mean(measurements)
	stddev := measurement.StdDev(measurements)

	stats := make(map[string]Stats)
	for k := range mean {
		stats[k] = Stats{
			Min:    mins[k],
			Max:    maxs[k],
			Mean:   mean[k],
			StdDev: stddev[k],
		}
	}

	return stats
}
