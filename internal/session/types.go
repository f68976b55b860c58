// types.go — Session/Manager structs and the operation-result envelope
// (spec §3 Session, §4.H, §7 "every operation returns ... a success
// record ... or an error").
package session

import (
	"sync"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/audit"
	"github.com/gasoline-dev/gasoline-broker/internal/blocker"
	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/fingerprint"
	"github.com/gasoline-dev/gasoline-broker/internal/governor"
	"github.com/gasoline-dev/gasoline-broker/internal/redaction"
	"github.com/gasoline-dev/gasoline-broker/internal/refstore"
	"github.com/gasoline-dev/gasoline-broker/internal/relay"
	"github.com/gasoline-dev/gasoline-broker/internal/scheduler"
	"github.com/gasoline-dev/gasoline-broker/internal/target"
	"github.com/gasoline-dev/gasoline-broker/internal/telemetry"
	"github.com/gasoline-dev/gasoline-broker/internal/tracker"
)

// Mode is one of the three operating modes spec §1/§3 names.
type Mode string

const (
	ModeManaged        Mode = "managed"
	ModeCdpConnect     Mode = "cdp-connect"
	ModeExtensionRelay Mode = "extension-relay"
)

// Session is one live automation context (spec §3 "Session"). Ref store,
// registry, trackers, blocker and fingerprint state are single-writer,
// owned by this struct; mu additionally serializes mutating operations
// per spec §5 ("concurrent external callers of the same sessionId are
// serialized ... via a per-session mutex where noted").
type Session struct {
	mu sync.Mutex

	ID             string
	Mode           Mode
	Headless       bool
	ExtensionLegacy bool

	Driver       driver.Driver
	ProfileDir   string
	ProfileOwned bool // true for ephemeral (non-persistent) profiles

	Registry    *target.Registry
	Refs        *refstore.Store
	Console     *tracker.ConsoleTracker
	Network     *tracker.NetworkTracker
	Exception   *tracker.ExceptionTracker
	Fingerprint *fingerprint.Pipeline
	Blocker     *blocker.FSM
	Governor    *governor.Governor
	Scheduler   *scheduler.Scheduler

	RelayBootstrap *relay.Bootstrap
	OpsClient      *relay.OpsClient
	LeaseID        string

	cfg config.Config
	log *telemetry.Logger

	cleanups []func() // page listeners, network-signal subscription, etc.
}

// Manager owns every live session in this process (spec §3/§4.H: one
// process, many sessions, no cross-process handoff per spec §1
// Non-goals).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg       config.Config
	log       *telemetry.Logger
	newDriver func() driver.Driver
	audit     *audit.AuditTrail
	redactor  *redaction.RedactionEngine
}

// NewManager builds a Manager. newDriver constructs a fresh opaque driver
// capability per session; tests supply a fake satisfying driver.Driver.
func NewManager(cfg config.Config, log *telemetry.Logger, newDriver func() driver.Driver) *Manager {
	if log == nil {
		log = telemetry.Nop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		log:       log,
		newDriver: newDriver,
		audit:     audit.NewAuditTrail(audit.AuditConfig{}),
		redactor:  redaction.NewRedactionEngine(""),
	}
}

// BlockerMeta is the blocker metadata attached to operation results while
// a blocker is active or resolving (spec §4.D "operation results carry
// blocker meta").
type BlockerMeta struct {
	Blocker    *blocker.Blocker
	State      blocker.State
	UpdatedAt  *int64
	Resolution *blocker.Resolution
}

// FingerprintMeta is the fingerprint metadata optionally attached to
// operation results (debug-trace-style callers; spec §4.E).
type FingerprintMeta struct {
	Tier1 fingerprint.Tier1Result
	Tier2 fingerprint.Tier2Snapshot
	Tier3 fingerprint.Tier3Snapshot
}

// Result is the structured envelope every Session Manager operation
// returns on success (spec §7).
type Result struct {
	Value       any
	TimingMs    int64
	Blocker     *BlockerMeta
	Fingerprint *FingerprintMeta
	RequestID   string
}

// timed runs fn and wraps its outcome in a Result, stamping TimingMs and
// RequestID; fn's own error (if any) is returned unwrapped so callers can
// still gaserr.KindOf() it.
func timed(requestID string, fn func() (any, error)) (Result, error) {
	start := time.Now()
	v, err := fn()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return Result{TimingMs: elapsed, RequestID: requestID}, err
	}
	return Result{Value: v, TimingMs: elapsed, RequestID: requestID}, nil
}

func blockerMetaFrom(snap blocker.Snapshot) *BlockerMeta {
	if snap.State == blocker.StateClear {
		return nil
	}
	updatedAt := snap.UpdatedAtMs
	return &BlockerMeta{
		Blocker:    snap.Blocker,
		State:      snap.State,
		UpdatedAt:  &updatedAt,
		Resolution: snap.Resolution,
	}
}
