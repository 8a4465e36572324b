// Package metrics exposes Prometheus counters for verification runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ElementsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eltcheck_elements_checked_total",
		Help: "Total number of tensor elements compared against the reference",
	}, []string{"phase"})

	Mismatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eltcheck_mismatches_total",
		Help: "Total number of elements outside tolerance",
	}, []string{"phase", "kind"})

	Cases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eltcheck_cases_total",
		Help: "Total number of test cases by verdict",
	}, []string{"verdict"})

	CaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eltcheck_case_duration_seconds",
		Help:    "Wall time of one forward+backward case",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)

// RecordPhase counts one checked phase.
func RecordPhase(phase, kind string, checked, failed int) {
	ElementsChecked.WithLabelValues(phase).Add(float64(checked))
	if failed > 0 {
		Mismatches.WithLabelValues(phase, kind).Add(float64(failed))
	}
}

// RecordCase counts a finished case and its duration.
func RecordCase(verdict string, d time.Duration) {
	Cases.WithLabelValues(verdict).Inc()
	CaseDuration.Observe(d.Seconds())
}
