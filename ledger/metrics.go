// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	votesCast  *prometheus.CounterVec
	rejections *prometheus.CounterVec
	txDuration prometheus.Histogram
}

// init builds the collectors; a nil registry leaves them unregistered
func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.votesCast = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "hackvote_votes_cast_total",
		Help: "votes committed, by phase",
	}, []string{"phase"})
	m.rejections = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "hackvote_vote_rejections_total",
		Help: "vote attempts rejected, by error code",
	}, []string{"code"})
	m.txDuration = promautoFactory.NewHistogram(prometheus.HistogramOpts{
		Name:    "hackvote_vote_transaction_seconds",
		Help:    "time spent in the vote transaction including retries",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	})
}
