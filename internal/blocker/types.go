package blocker

import "time"

// State is the FSM's three positions (spec §3 "Blocker state").
type State string

const (
	StateClear     State = "clear"
	StateActive    State = "active"
	StateResolving State = "resolving"
)

// ResolutionStatus is the outcome recorded when a blocker stops being active.
type ResolutionStatus string

const (
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionUnresolved ResolutionStatus = "unresolved"
	ResolutionDeferred   ResolutionStatus = "deferred"
)

// ResolutionReason explains why a ResolutionStatus was reached.
type ResolutionReason string

const (
	ReasonVerifierPassed     ResolutionReason = "verifier_passed"
	ReasonVerificationTimeout ResolutionReason = "verification_timeout"
	ReasonVerifierFailed     ResolutionReason = "verifier_failed"
	ReasonEnvLimited         ResolutionReason = "env_limited"
	ReasonManualClear        ResolutionReason = "manual_clear"
)

// Resolution is attached to a state once a blocker stops being active.
type Resolution struct {
	Status ResolutionStatus
	Reason ResolutionReason
}

// Blocker is a classified obstacle (spec GLOSSARY).
type Blocker struct {
	Type    string // e.g. "auth_required", "anti_bot_challenge", "upstream_block"
	Message string
}

// Snapshot is the externally-visible shape of the FSM's current state.
type Snapshot struct {
	State            State
	Blocker          *Blocker
	TargetKey        string
	ActivatedAtMs    int64
	LastDetectedAtMs int64
	UpdatedAtMs      int64
	Resolution       *Resolution
}

// ClassifierInput is the evidence a classifier evaluates (spec §4.D).
type ClassifierInput struct {
	Source              string
	URL                 string
	FinalURL             string
	Title               string
	Status              int
	ProviderErrorCode   string
	Message             string
	NetworkHosts        []string
	MatchedPatterns     []string
	PromptGuardEnabled  bool
}

// Classifier inspects evidence and returns a non-nil Blocker when it
// recognizes an obstacle, or nil otherwise.
type Classifier func(ClassifierInput) *Blocker

// Reconciliation is the explicit record every operation feeds into the
// FSM instead of an implicit verifier flag threaded through call state.
type Reconciliation struct {
	ActiveTargetID    string
	Input             ClassifierInput
	Verifier          bool // true if this op is a verifier (nav complete, waitForLoad, waitForRef success)
	EnvLimited        bool // true if markVerificationFailure should defer rather than fail
	IncludeArtifacts  bool
}

func nowMs() int64 { return time.Now().UnixMilli() }

func targetKey(targetID, hostname string) string {
	return targetID + ":" + hostname
}
