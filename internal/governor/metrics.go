// metrics.go — prometheus gauges for the governor's effective cap and
// pressure classification (SPEC_FULL.md DOMAIN STACK: prometheus/client_golang).
package governor

import "github.com/prometheus/client_golang/prometheus"

var (
	effectiveCapGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gasoline",
		Subsystem: "governor",
		Name:      "effective_cap",
		Help:      "Current adaptive concurrency cap for a session.",
	}, []string{"session_id", "mode_variant"})

	pressureGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gasoline",
		Subsystem: "governor",
		Name:      "pressure_level",
		Help:      "Last classified pressure level (0=healthy,1=medium,2=high,3=critical).",
	}, []string{"session_id"})
)

// MustRegister registers the governor's gauges with reg. Call once per
// process (the daemon's metrics endpoint owns the registry).
func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(effectiveCapGauge, pressureGauge)
}

func pressureLevel(p Pressure) float64 {
	switch p {
	case PressureMedium:
		return 1
	case PressureHigh:
		return 2
	case PressureCritical:
		return 3
	default:
		return 0
	}
}

// Observe publishes the current state to the registered gauges.
func (g *Governor) Observe(sessionID string) {
	s := g.State()
	effectiveCapGauge.WithLabelValues(sessionID, string(s.ModeVariant)).Set(float64(s.EffectiveCap))
	pressureGauge.WithLabelValues(sessionID).Set(pressureLevel(s.LastPressure))
}
