// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewMetricsRegistry builds the registry served on /metrics: Go runtime and
// process collectors plus the nudge pipeline collectors.
func NewMetricsRegistry() (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register nudge metrics: %w", err)
	}

	return registry, nil
}
