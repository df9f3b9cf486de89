package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the intake pipeline and its
// external collaborators.
type Metrics struct {
	ReportsIngested *prometheus.CounterVec // labels: outcome={persisted,rejected,degraded}
	Classifications *prometheus.CounterVec // labels: label
	DispatchResults *prometheus.CounterVec // labels: recipient={authority,reporter}, outcome={delivered,failed}

	ExternalCallDuration *prometheus.HistogramVec // labels: service={transcription,captioning,embedding,geocoding,messaging,summarization}

	ProximityQueries prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency_core",
			Name:      "reports_ingested_total",
			Help:      "Intake submissions by outcome.",
		}, []string{"outcome"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency_core",
			Name:      "classifications_total",
			Help:      "Classification results by emergency type label.",
		}, []string{"label"}),
		DispatchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emergency_core",
			Name:      "dispatch_results_total",
			Help:      "Notification sends by recipient and outcome.",
		}, []string{"recipient", "outcome"}),
		ExternalCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "emergency_core",
			Name:      "external_call_duration_seconds",
			Help:      "External collaborator call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"service"}),
		ProximityQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emergency_core",
			Name:      "proximity_queries_total",
			Help:      "Nearest-neighbor queries served.",
		}),
	}

	reg.MustRegister(
		m.ReportsIngested,
		m.Classifications,
		m.DispatchResults,
		m.ExternalCallDuration,
		m.ProximityQueries,
	)
	return m
}
