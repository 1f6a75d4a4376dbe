// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pagereq

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

const tracerName = "go-pagerequest/pagereq"

// Pass status labels.
const (
	statusOK        = "ok"
	statusEmpty     = "empty"
	statusCancelled = "cancelled"
)

// Package-level metrics, registered with the default registry.
var (
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pagerequest",
		Name:      "pass_duration_seconds",
		Help:      "Duration of resolution passes in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagerequest",
		Name:      "passes_total",
		Help:      "Total resolution passes by status.",
	}, []string{"status"})

	// Labels: kind is one of unresolved, ambiguous, cycle, unknown_group.
	diagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagerequest",
		Name:      "diagnostics_total",
		Help:      "Total diagnostics reported by resolution passes.",
	}, []string{"kind"})
)

// recordPass records metrics for a finished pass.
func recordPass(d time.Duration, status string, diags []types.Diagnostic) {
	passDuration.Observe(d.Seconds())
	passesTotal.WithLabelValues(status).Inc()
	for _, diag := range diags {
		diagnosticsTotal.WithLabelValues(diag.Kind.String()).Inc()
	}
}
