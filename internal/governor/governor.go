// governor.go — pressure classification, hysteresis, effective cap
// (spec §4.F).
package governor

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

// ModeVariant is the six-element enum the governor sizes staticCap from.
type ModeVariant string

const (
	ModeManagedHeaded            ModeVariant = "managedHeaded"
	ModeManagedHeadless          ModeVariant = "managedHeadless"
	ModeCdpConnectHeaded         ModeVariant = "cdpConnectHeaded"
	ModeCdpConnectHeadless       ModeVariant = "cdpConnectHeadless"
	ModeExtensionOpsHeaded       ModeVariant = "extensionOpsHeaded"
	ModeExtensionLegacyCdpHeaded ModeVariant = "extensionLegacyCdpHeaded"
)

// DeriveModeVariant computes modeVariant from (mode, headless,
// extensionLegacy) per spec §4.F.
func DeriveModeVariant(mode string, headless bool, extensionLegacy bool) ModeVariant {
	switch mode {
	case "managed":
		if headless {
			return ModeManagedHeadless
		}
		return ModeManagedHeaded
	case "cdp-connect":
		if headless {
			return ModeCdpConnectHeadless
		}
		return ModeCdpConnectHeaded
	case "extension-relay":
		if extensionLegacy {
			return ModeExtensionLegacyCdpHeaded
		}
		return ModeExtensionOpsHeaded
	default:
		return ModeManagedHeadless
	}
}

func staticCapFor(caps config.ModeCaps, variant ModeVariant) int {
	switch variant {
	case ModeManagedHeaded:
		return caps.ManagedHeaded
	case ModeManagedHeadless:
		return caps.ManagedHeadless
	case ModeCdpConnectHeaded:
		return caps.CdpConnectHeaded
	case ModeCdpConnectHeadless:
		return caps.CdpConnectHeadless
	case ModeExtensionOpsHeaded:
		return caps.ExtensionOpsHeaded
	case ModeExtensionLegacyCdpHeaded:
		return caps.ExtensionLegacyCdpHeaded
	default:
		return caps.ManagedHeadless
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pressure is the four-level classification (spec §4.F).
type Pressure string

const (
	PressureHealthy  Pressure = "healthy"
	PressureMedium   Pressure = "medium"
	PressureHigh     Pressure = "high"
	PressureCritical Pressure = "critical"
)

// Sample is the periodic or on-demand pressure input (spec §4.F).
type Sample struct {
	HostFreeMemPct   float64
	RssUsagePct      float64
	QueueAgeMs       int
	QueueDepth       int
	DiscardedSignals int
	FrozenSignals    int
}

// Classify applies the first-match-wins rules from spec §4.F.
func Classify(cfg config.ParallelismConfig, s Sample) Pressure {
	switch {
	case s.HostFreeMemPct <= cfg.HostFreeMemCriticalPct || s.RssUsagePct >= cfg.RssCriticalPct ||
		float64(s.QueueAgeMs) >= float64(cfg.QueueAgeCriticalMs):
		return PressureCritical
	case s.HostFreeMemPct <= cfg.HostFreeMemHighPct || s.RssUsagePct >= cfg.RssHighPct ||
		float64(s.QueueAgeMs) >= float64(cfg.QueueAgeHighMs) || s.DiscardedSignals > 0:
		return PressureHigh
	case s.HostFreeMemPct <= cfg.HostFreeMemMediumPct || s.RssUsagePct >= cfg.RssSoftPct || s.FrozenSignals > 0:
		return PressureMedium
	default:
		return PressureHealthy
	}
}

// State is the snapshot shape (spec §3 "Governor state").
type State struct {
	ModeVariant    ModeVariant
	StaticCap      int
	EffectiveCap   int
	HealthyWindows int
	LastSampleAt   time.Time
	LastPressure   Pressure
}

// Governor owns one session's adaptive cap. Single-writer, guarded by mu.
//
// Admission is backed by a golang.org/x/sync/semaphore.Weighted sized to
// staticCap: a slot is a unit of weight, acquired by the scheduler via
// TryAcquireSlot and returned via ReleaseSlot. A semaphore's total weight
// cannot shrink, so a drop in effectiveCap is modeled by the governor
// holding back the difference as weight it acquires for itself and never
// releases to callers (heldBack); pendingShrink tracks any shortfall that
// couldn't be withheld immediately because all of staticCap was already
// in use, absorbed opportunistically as slots are released.
type Governor struct {
	mu sync.Mutex

	cfg   config.ParallelismConfig
	state State

	sem           *semaphore.Weighted
	heldBack      int64
	pendingShrink int64
}

// New computes modeVariant and staticCap at launch/connect time and
// starts with effectiveCap == staticCap (spec §4.F).
func New(cfg config.ParallelismConfig, mode string, headless, extensionLegacy bool) *Governor {
	variant := DeriveModeVariant(mode, headless, extensionLegacy)
	static := clamp(staticCapFor(cfg.ModeCaps, variant), cfg.Floor, staticCapFor(cfg.ModeCaps, variant))
	if static < cfg.Floor {
		static = cfg.Floor
	}
	return &Governor{
		cfg: cfg,
		state: State{
			ModeVariant:  variant,
			StaticCap:    static,
			EffectiveCap: static,
			LastPressure: PressureHealthy,
		},
		sem: semaphore.NewWeighted(int64(static)),
	}
}

// TryAcquireSlot admits one caller against the current effective cap,
// non-blocking. The scheduler calls this once per admission attempt.
func (g *Governor) TryAcquireSlot() bool {
	return g.sem.TryAcquire(1)
}

// ReleaseSlot returns one previously-acquired slot. If a shrink is still
// being absorbed (pendingShrink > 0), the slot is retired into heldBack
// instead of being handed back to the semaphore, so it does not become
// available to the next waiter.
func (g *Governor) ReleaseSlot() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingShrink > 0 {
		g.pendingShrink--
		g.heldBack++
		return
	}
	g.sem.Release(1)
}

// shrinkLocked withholds n units of weight from the semaphore to lower the
// cap. Whatever can't be acquired right now (because it's in use by
// in-flight callers) becomes pendingShrink, absorbed by future ReleaseSlot
// calls. Must be called with mu held.
func (g *Governor) shrinkLocked(n int) {
	if n <= 0 {
		return
	}
	if g.sem.TryAcquire(int64(n)) {
		g.heldBack += int64(n)
		return
	}
	g.pendingShrink += int64(n)
}

// growLocked returns n units of held-back weight to the semaphore,
// cancelling any outstanding pendingShrink first. Must be called with mu
// held.
func (g *Governor) growLocked(n int) {
	if n <= 0 {
		return
	}
	remaining := int64(n)
	if g.pendingShrink > 0 {
		cancel := remaining
		if cancel > g.pendingShrink {
			cancel = g.pendingShrink
		}
		g.pendingShrink -= cancel
		remaining -= cancel
	}
	if remaining <= 0 {
		return
	}
	if remaining > g.heldBack {
		remaining = g.heldBack
	}
	g.heldBack -= remaining
	if remaining > 0 {
		g.sem.Release(remaining)
	}
}

// Sample feeds one pressure sample through classification, penalty, and
// hysteresis, updating effectiveCap (spec §4.F).
func (g *Governor) Sample(s Sample) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	pressure := Classify(g.cfg, s)
	lifecyclePenalty := s.DiscardedSignals + s.FrozenSignals

	var targetCap int
	switch pressure {
	case PressureCritical:
		targetCap = g.cfg.Floor
	case PressureHigh:
		targetCap = clamp(g.state.StaticCap-2-lifecyclePenalty, g.cfg.Floor, g.state.StaticCap)
	case PressureMedium:
		targetCap = clamp(g.state.StaticCap-1-lifecyclePenalty, g.cfg.Floor, g.state.StaticCap)
	default:
		targetCap = clamp(g.state.StaticCap-lifecyclePenalty, g.cfg.Floor, g.state.StaticCap)
	}

	switch {
	case targetCap < g.state.EffectiveCap:
		g.shrinkLocked(g.state.EffectiveCap - targetCap)
		g.state.EffectiveCap = targetCap
		g.state.HealthyWindows = 0
	case targetCap > g.state.EffectiveCap:
		if pressure == PressureHealthy {
			g.state.HealthyWindows++
			if g.state.HealthyWindows >= g.cfg.RecoveryStableWindows {
				g.growLocked(1)
				g.state.EffectiveCap++
				g.state.HealthyWindows = 0
			}
		} else {
			g.state.HealthyWindows = 0
		}
	default:
		if pressure == PressureHealthy {
			g.state.HealthyWindows++
		} else {
			g.state.HealthyWindows = 0
		}
	}

	g.state.LastPressure = pressure
	g.state.LastSampleAt = time.Now()
	return g.state
}

// State returns a snapshot without sampling.
func (g *Governor) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// EffectiveCap is a convenience accessor for state/metrics; admission
// itself goes through TryAcquireSlot, not this value.
func (g *Governor) EffectiveCap() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.EffectiveCap
}
