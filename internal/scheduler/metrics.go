// metrics.go — prometheus gauges for admission/queue depth (SPEC_FULL.md
// DOMAIN STACK: prometheus/client_golang), following the same
// Observe-on-owning-struct pattern as internal/governor/metrics.go.
package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	inflightGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gasoline",
		Subsystem: "scheduler",
		Name:      "inflight",
		Help:      "Number of operations currently admitted and running for a session.",
	}, []string{"session_id"})

	queueDepthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gasoline",
		Subsystem: "scheduler",
		Name:      "queue_depth",
		Help:      "Number of operations waiting for an admission slot.",
	}, []string{"session_id"})
)

// MustRegister registers the scheduler's gauges with reg.
func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(inflightGauge, queueDepthGauge)
}

// Observe publishes the current inflight/queue counts to the registered
// gauges.
func (s *Scheduler) Observe(sessionID string) {
	inflightGauge.WithLabelValues(sessionID).Set(float64(s.Inflight()))
	queueDepthGauge.WithLabelValues(sessionID).Set(float64(s.WaiterCount()))
}
