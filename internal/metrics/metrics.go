package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts upload requests by outcome
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speakwise_uploads_total",
		Help: "Number of upload requests by outcome",
	}, []string{"outcome"})

	// WebhooksTotal counts webhook deliveries by outcome
	WebhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speakwise_webhooks_total",
		Help: "Number of media host webhook deliveries by outcome",
	}, []string{"outcome"})

	// StatusTransitions counts video lifecycle transitions
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speakwise_video_status_transitions_total",
		Help: "Number of video status transitions",
	}, []string{"from", "to"})

	// AnalysisDuration observes end-to-end analysis pipeline duration
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "speakwise_analysis_duration_seconds",
		Help:    "Duration of the analysis pipeline per video",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// JobsProcessed counts background jobs by final status
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speakwise_jobs_processed_total",
		Help: "Number of background jobs processed by final status",
	}, []string{"type", "status"})
)
