// Package metrics exposes prometheus counters for the issuance pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_issued_total",
		Help: "Signed payloads published, by carried decision.",
	}, []string{"decision"})

	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_publish_failures_total",
		Help: "Transport publish attempts that failed.",
	})

	DebounceSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_debounce_skips_total",
		Help: "Issuance triggers dropped by the per-target debounce gate.",
	})

	ForcedDenies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_forced_denies_total",
		Help: "Deny payloads forced by session close or the staleness supervisor.",
	})
)
