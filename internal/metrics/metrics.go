package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoattend_submissions_total",
			Help: "Total number of submit-log requests by outcome",
		},
		[]string{"outcome"},
	)
	samplesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoattend_samples_recorded_total",
			Help: "Total number of samples appended to the ledger",
		},
	)
	decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoattend_presence_decisions_total",
			Help: "Total number of presence decisions by result",
		},
		[]string{"present"},
	)
)

func ObserveSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

func ObserveSamplesRecorded(n int) {
	samplesRecorded.Add(float64(n))
}

func ObserveDecision(present bool) {
	if present {
		decisions.WithLabelValues("true").Inc()
		return
	}
	decisions.WithLabelValues("false").Inc()
}
