package main

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/mtraver/lps2x/cache"
	"github.com/mtraver/lps2x/measurement"
)

type indexHandler struct {
	deviceID string
	model    string
	latest   *cache.Cache[measurement.StorableMeasurement]
	history  *history
}

func (h indexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	fmt.Fprintf(w, "device: %s\n", h.deviceID)
	fmt.Fprintf(w, "sensor: %s\n", h.model)

	m, ok := h.latest.Get(measurement.CacheKeyLatest(h.deviceID))
	if !ok {
		fmt.Fprintln(w, "latest: none")
		return
	}
	fmt.Fprintf(w, "latest: %s\n", m.String())

	if h.history == nil {
		return
	}
	stats := summaryStats(h.history.snapshot())
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := stats[k]
		fmt.Fprintf(w, "%s (last %v): min %.2f max %.2f mean %.2f stddev %.3f\n", k, h.history.window, s.Min, s.Max, s.Mean, s.StdDev)
	}
}
