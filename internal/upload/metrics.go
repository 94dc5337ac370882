package upload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dalled",
			Subsystem: "upload",
			Name:      "requests_total",
			Help:      "Image uploads by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)
	uploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dalled",
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time spent uploading a single image.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(uploadsTotal, uploadDuration)
}

func observe(backend string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	uploadsTotal.WithLabelValues(backend, outcome).Inc()
	uploadDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
