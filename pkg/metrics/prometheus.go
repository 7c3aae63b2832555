package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	UnitsProcessed *prometheus.CounterVec
	FactsTotal     *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
}

// NewMetrics creates new prometheus metrics on the given registerer.
// Tests pass prometheus.NewRegistry() to avoid global state.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UnitsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_processed_total",
			Help:      "The total number of job units processed",
		}, []string{"job"}),
		FactsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facts_total",
			Help:      "Reconciliation outcomes for observed travel facts",
		}, []string{"job", "outcome"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of unit failures by kind",
		}, []string{"job", "kind"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time taken to run one job pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
}
