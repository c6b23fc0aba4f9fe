// Package metrics exposes Prometheus instruments for the CMS.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts tracks admin login attempts by result (success/failure).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_login_attempts_total",
			Help: "Admin login attempts by result",
		},
		[]string{"result"},
	)

	// ContentWrites tracks content document writes by operation and status.
	ContentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_content_writes_total",
			Help: "Content document writes by operation (save/delete_image) and status",
		},
		[]string{"operation", "status"},
	)

	// UploadsTotal tracks uploaded files by outcome (stored/skipped).
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_uploads_total",
			Help: "Uploaded image files by outcome",
		},
		[]string{"outcome"},
	)

	// ThumbnailsTotal tracks thumbnail generation by status.
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_thumbnails_total",
			Help: "Gallery thumbnails generated by status",
		},
		[]string{"status"},
	)

	// ThumbnailDuration tracks how long successful thumbnail renders take.
	ThumbnailDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cms_thumbnail_duration_seconds",
			Help:    "Thumbnail render duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// ExternalEdits counts content file changes not made by this process.
	ExternalEdits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_content_external_edits_total",
			Help: "Content file modifications made outside the application",
		},
	)
)
