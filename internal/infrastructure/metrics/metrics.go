package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsTotal counts finished merge jobs by variant and outcome.
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_worker_jobs_total",
		Help: "Completed merge jobs by variant and outcome.",
	}, []string{"variant", "outcome"})

	// StageDuration observes wall-clock time per pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "video_worker_stage_duration_seconds",
		Help:    "Duration of individual pipeline stages.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})

	// DownloadsServed counts artifacts streamed from the output area.
	DownloadsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_worker_downloads_served_total",
		Help: "Artifacts served via the download endpoint.",
	})
)
