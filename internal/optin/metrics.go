package optin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	OutcomeAccepted       = "accepted"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeRejected       = "rejected"
	OutcomeReplayed       = "replayed"
	OutcomeError          = "error"
)

// Metrics holds the opt-in service collectors
type Metrics struct {
	Requests       *prometheus.CounterVec
	VerifyDuration prometheus.Histogram
}

// NewMetrics registers the collectors on registry, or on the default
// registerer when registry is nil
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optin_requests_total",
				Help: "Subscription change requests by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optin_proof_verify_seconds",
			Help:    "Time spent verifying a proof, replay check included",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(action, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(action, outcome).Inc()
}
