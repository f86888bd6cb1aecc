// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	transitions *prometheus.CounterVec
	phase       prometheus.Gauge
}

func (m *eventMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.transitions = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "hackvote_phase_transitions_total",
		Help: "event status transitions, by target status",
	}, []string{"to"})
	m.phase = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "hackvote_event_phase",
		Help: "position of the current event status in the lifecycle (0 = waiting)",
	})
}
