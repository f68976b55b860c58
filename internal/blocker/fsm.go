// fsm.go — the blocker state machine (spec §4.D).
package blocker

import (
	"net/url"
	"sync"
)

// FSM owns one session's blocker state. Single-writer: all access is
// guarded by mu, matching spec §5's single-writer model for session
// sub-state.
type FSM struct {
	mu sync.Mutex

	state            State
	blocker          *Blocker
	targetKey        string
	activatedAtMs    int64
	lastDetectedAtMs int64
	updatedAtMs      int64
	resolution       *Resolution

	timeoutMs int64
}

// New creates an FSM starting in state clear. timeoutMs is the
// configured blocker resolution timeout (spec §6 blockerResolutionTimeoutMs).
func New(timeoutMs int64) *FSM {
	return &FSM{state: StateClear, timeoutMs: timeoutMs}
}

// Reconcile applies classify to rec.Input and advances the FSM per
// spec §4.D. It is the single entry point for both detection and
// verifier-driven resolution.
func (f *FSM) Reconcile(classify Classifier, rec Reconciliation) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	b := classify(rec.Input)
	now := nowMs()

	switch f.state {
	case StateClear:
		if b != nil {
			f.state = StateActive
			f.blocker = b
			f.targetKey = targetKey(rec.ActiveTargetID, hostnameOf(rec.Input))
			f.activatedAtMs = now
			f.lastDetectedAtMs = now
			f.updatedAtMs = now
			f.resolution = nil
		}

	case StateActive, StateResolving:
		if rec.Verifier && f.state == StateActive {
			f.state = StateResolving
			f.updatedAtMs = now
			f.resolution = nil
		}

		switch {
		case b != nil:
			f.blocker = b
			f.lastDetectedAtMs = now
			f.updatedAtMs = now
			if f.state == StateResolving {
				f.state = StateActive
			}
		case rec.Verifier || f.state == StateResolving:
			f.state = StateClear
			f.blocker = nil
			f.resolution = &Resolution{Status: ResolutionResolved, Reason: ReasonVerifierPassed}
			f.updatedAtMs = now
		case now-f.lastDetectedAtMs >= f.timeoutMs:
			f.resolution = &Resolution{Status: ResolutionUnresolved, Reason: ReasonVerificationTimeout}
			f.updatedAtMs = now
		}
	}

	return f.snapshotLocked()
}

// CheckTimeout performs the time-based transition without classifying
// new evidence, for periodic idle polling between operations.
func (f *FSM) CheckTimeout() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateActive || f.state == StateResolving {
		now := nowMs()
		if now-f.lastDetectedAtMs >= f.timeoutMs {
			f.resolution = &Resolution{Status: ResolutionUnresolved, Reason: ReasonVerificationTimeout}
			f.updatedAtMs = now
		}
	}
	return f.snapshotLocked()
}

// MarkVerificationFailure explicitly fails verification for the active
// blocker. envLimited chooses deferred over unresolved (spec §4.D).
func (f *FSM) MarkVerificationFailure(envLimited bool) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateActive || f.state == StateResolving {
		f.state = StateActive
		reason := ReasonVerifierFailed
		status := ResolutionUnresolved
		if envLimited {
			reason = ReasonEnvLimited
			status = ResolutionDeferred
		}
		f.resolution = &Resolution{Status: status, Reason: reason}
		f.updatedAtMs = nowMs()
	}
	return f.snapshotLocked()
}

// ClearBlocker unconditionally returns the FSM to clear (spec §4.D
// "any -> clear (resolved, manual_clear)").
func (f *FSM) ClearBlocker() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateClear
	f.blocker = nil
	f.resolution = &Resolution{Status: ResolutionResolved, Reason: ReasonManualClear}
	f.updatedAtMs = nowMs()
	return f.snapshotLocked()
}

// Snapshot returns the current state without mutating it.
func (f *FSM) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *FSM) snapshotLocked() Snapshot {
	return Snapshot{
		State:            f.state,
		Blocker:          f.blocker,
		TargetKey:        f.targetKey,
		ActivatedAtMs:    f.activatedAtMs,
		LastDetectedAtMs: f.lastDetectedAtMs,
		UpdatedAtMs:      f.updatedAtMs,
		Resolution:       f.resolution,
	}
}

func hostnameOf(in ClassifierInput) string {
	raw := in.FinalURL
	if raw == "" {
		raw = in.URL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
