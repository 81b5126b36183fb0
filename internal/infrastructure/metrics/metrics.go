// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Issue dispatch outcomes
const (
	OutcomeMock    = "mock"
	OutcomeCached  = "cached"
	OutcomeFound   = "found"
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// Calendar event results
const (
	ResultWritten      = "written"
	ResultMirrored     = "mirrored"
	ResultMirrorFailed = "mirror_failed"
)

var (
	// IssueDispatchTotal counts issue dispatches by outcome
	IssueDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postmeeting_issue_dispatch_total",
		Help: "Total issue dispatches by outcome",
	}, []string{"outcome"})

	// CalendarEventsTotal counts calendar artifacts by result
	CalendarEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postmeeting_calendar_events_total",
		Help: "Total calendar artifacts by result",
	}, []string{"result"})

	// PipelineStageSeconds tracks pipeline stage latency
	PipelineStageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postmeeting_pipeline_stage_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~160s
	}, []string{"stage"})
)
