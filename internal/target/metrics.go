// metrics.go — prometheus gauge for registered target count (SPEC_FULL.md
// DOMAIN STACK: prometheus/client_golang), following the same
// Observe-on-owning-struct pattern as internal/blocker/metrics.go and
// internal/governor/metrics.go.
package target

import "github.com/prometheus/client_golang/prometheus"

var countGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "gasoline",
	Subsystem: "target",
	Name:      "registered_count",
	Help:      "Number of targets currently registered for a session.",
}, []string{"session_id"})

// MustRegister registers the target registry's gauge with reg.
func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(countGauge)
}

// Observe publishes the current registered-target count to the
// registered gauge.
func (r *Registry) Observe(sessionID string) {
	r.mu.Lock()
	n := len(r.byID)
	r.mu.Unlock()
	countGauge.WithLabelValues(sessionID).Set(float64(n))
}
