package model

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dalled",
			Subsystem: "model",
			Name:      "generations_total",
			Help:      "Generation calls by outcome (ok, error, too_busy)",
		},
		[]string{"outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dalled",
			Subsystem: "model",
			Name:      "generation_duration_seconds",
			Help:      "Duration of model backend calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"outcome"},
	)

	imagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dalled",
			Subsystem: "model",
			Name:      "images_total",
			Help:      "Images produced by the model",
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generationDuration, imagesTotal)
}
