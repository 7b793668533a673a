// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics holds the Prometheus collectors for the nudge pipeline.
// Collectors are package level and registered once by the metrics server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Decision outcomes.
const (
	OutcomeSent       = "sent"
	OutcomeSuppressed = "suppressed"
	OutcomeDeferred   = "deferred"
	OutcomeDropped    = "dropped"
	OutcomeConflict   = "conflict"
)

// Dispatch results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

var (
	// DecisionsTotal counts every candidate evaluation by outcome.
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nudge_decisions_total",
			Help: "Total number of nudge candidate decisions",
		},
		[]string{"event_key", "outcome", "reason"},
	)

	// DispatchTotal counts deliveries per channel.
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nudge_dispatch_total",
			Help: "Total number of nudge deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)

	// EvaluationDuration measures one EvaluateCreator cycle.
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nudge_evaluation_duration_seconds",
			Help:    "Duration of one creator evaluation cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EventsTotal counts lifecycle events by type and result.
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nudge_events_total",
			Help: "Total number of lifecycle events received",
		},
		[]string{"event_type", "result"},
	)
)

// Collectors returns every collector defined in this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		DecisionsTotal,
		DispatchTotal,
		EvaluationDuration,
		EventsTotal,
	}
}

// Register adds the collectors to registry.
func Register(registry prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
