// Package metrics exposes the monitor's own counters. These instrument the
// polling loops themselves, not the platform's business metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollTotal counts upstream polls by source (alerts, breaches, kpi) and
	// outcome (ok, error).
	PollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printyx_monitor",
		Name:      "poll_total",
		Help:      "Upstream polls by source and outcome.",
	}, []string{"source", "outcome"})

	// ToastTotal counts critical toasts emitted by the aggregator.
	ToastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "printyx_monitor",
		Name:      "toast_total",
		Help:      "Critical toasts emitted, one per novel batch.",
	})

	// GateCheckTotal counts resolved gate checks by result (passed, failed, error).
	GateCheckTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "printyx_monitor",
		Name:      "gate_check_total",
		Help:      "Resolved validation gate checks by result.",
	}, []string{"result"})

	// StaleResponseTotal counts validation responses discarded because the
	// gate's subject changed while the request was in flight.
	StaleResponseTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "printyx_monitor",
		Name:      "stale_response_total",
		Help:      "Validation responses discarded by the stale-response guard.",
	})
)
