package main

import (
	"github.com/mtraver/lps2x/measurement"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exported on /metrics.
type metrics struct {
	pressure          prometheus.Gauge
	temp              prometheus.Gauge
	referencePressure prometheus.Gauge
	senseFailures     *prometheus.CounterVec
	publishFailures   *prometheus.CounterVec
	pending           prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pressure_hpa",
			Help: "Last measured barometric pressure in hPa.",
		}),
		temp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "temperature_celsius",
			Help: "Last measured temperature in °C.",
		}),
		referencePressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reference_pressure_hpa",
			Help: "Autozero reference pressure in hPa.",
		}),
		senseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sense_failures_total",
				Help: "Failed sensor reads.",
			},
			[]string{"sensor"},
		),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "publish_failures_total",
				Help: "Failed publishes.",
			},
			[]string{"sink"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pending_measurements",
			Help: "Measurements saved on disk awaiting publication.",
		}),
	}
}

func (m *metrics) register(r prometheus.Registerer) {
	r.MustRegister(m.pressure, m.temp, m.referencePressure, m.senseFailures, m.publishFailures, m.pending)
}

// observe sets the gauges from the values present in sm.
func (m *metrics) observe(sm *measurement.StorableMeasurement) {
	if sm.Pressure != nil {
		m.pressure.Set(float64(*sm.Pressure))
	}
	if sm.Temp != nil {
		m.temp.Set(float64(*sm.Temp))
	}
	if sm.ReferencePressure != nil {
		m.referencePressure.Set(float64(*sm.ReferencePressure))
	}
}
