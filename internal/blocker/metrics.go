// metrics.go — prometheus gauge for active blocker state (SPEC_FULL.md
// DOMAIN STACK: prometheus/client_golang), following the same
// Observe-on-owning-struct pattern as internal/governor/metrics.go.
package blocker

import "github.com/prometheus/client_golang/prometheus"

var activeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "gasoline",
	Subsystem: "blocker",
	Name:      "active",
	Help:      "1 if a blocker is active or resolving for the session, 0 if clear.",
}, []string{"session_id"})

// MustRegister registers the blocker's gauge with reg.
func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(activeGauge)
}

// Observe publishes the current state to the registered gauge.
func (f *FSM) Observe(sessionID string) {
	snap := f.Snapshot()
	v := 0.0
	if snap.State != StateClear {
		v = 1.0
	}
	activeGauge.WithLabelValues(sessionID).Set(v)
}
