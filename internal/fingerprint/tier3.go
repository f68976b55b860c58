// tier3.go — adaptive canary promote/rollback (spec §4.E).
package fingerprint

import (
	"github.com/gasoline-dev/gasoline-broker/internal/buffers"
	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

// CanarySample is one outcome recorded in the canary window.
type CanarySample struct {
	Score        int
	HasChallenge bool
	ChallengeCount int
	RotationCount  int
}

// CanaryAction is the outcome of evaluating the canary window.
type CanaryAction string

const (
	CanaryActionNone     CanaryAction = "none"
	CanaryActionPromote  CanaryAction = "promote"
	CanaryActionRollback CanaryAction = "rollback"
)

// Tier3Status mirrors spec §3 Tier3 "status".
type Tier3Status string

const (
	Tier3StatusActive   Tier3Status = "active"
	Tier3StatusFallback Tier3Status = "fallback"
)

// TargetClass is the derived log field from spec §4.E.
type TargetClass string

const (
	TargetClassDisabled     TargetClass = "disabled"
	TargetClassErrorSurface TargetClass = "error_surface"
	TargetClassHighFriction TargetClass = "high_friction"
	TargetClassStandard     TargetClass = "standard"
)

// Tier3State is the adaptive canary-promoted profile state.
type Tier3State struct {
	Enabled        bool
	Status         Tier3Status
	AdapterName    string
	FallbackTier   string
	FallbackReason string

	Level        int
	AverageScore float64
	LastAction   CanaryAction

	cfg     config.Tier3Config
	samples *buffers.RingBuffer[CanarySample]
}

// NewTier3 initializes Tier3 state with canary at level 0.
func NewTier3(cfg config.Tier3Config, adapterName string) *Tier3State {
	windowSize := cfg.Canary.WindowSize
	if windowSize <= 0 {
		windowSize = 20
	}
	return &Tier3State{
		Enabled:      cfg.Enabled,
		Status:       Tier3StatusActive,
		AdapterName:  adapterName,
		FallbackTier: cfg.FallbackTier,
		cfg:          cfg,
		samples:      buffers.NewRingBuffer[CanarySample](windowSize),
	}
}

// Tier3EvalResult carries the action plus the fields needed for logging
// (spec §4.E "Logs include ... derived targetClass").
type Tier3EvalResult struct {
	Action         CanaryAction
	SampleCount    int
	AverageScore   float64
	DisableTier2   bool // true when fallbackTier=tier1 on rollback
}

// Apply appends a sample from a Tier2 outcome, recomputes the moving
// average, and decides promote/rollback when enough samples exist.
func (t *Tier3State) Apply(t2Health int, hasChallenge bool, challengeCount, rotationCount int) Tier3EvalResult {
	if !t.Enabled {
		return Tier3EvalResult{Action: CanaryActionNone}
	}

	t.samples.WriteOne(CanarySample{
		Score:          t2Health,
		HasChallenge:   hasChallenge,
		ChallengeCount: challengeCount,
		RotationCount:  rotationCount,
	})

	all := t.samples.ReadAll()
	sum := 0
	for _, s := range all {
		sum += s.Score
	}
	avg := 0.0
	if len(all) > 0 {
		avg = float64(sum) / float64(len(all))
	}
	t.AverageScore = avg

	result := Tier3EvalResult{SampleCount: len(all), AverageScore: avg, Action: CanaryActionNone}
	if len(all) < t.cfg.Canary.MinSamples {
		return result
	}

	switch {
	case avg >= float64(t.cfg.Canary.PromoteThreshold):
		t.Level++
		t.LastAction = CanaryActionPromote
		t.Status = Tier3StatusActive
		result.Action = CanaryActionPromote
	case avg <= float64(t.cfg.Canary.RollbackThreshold):
		t.LastAction = CanaryActionRollback
		t.Status = Tier3StatusFallback
		t.FallbackReason = "average canary score fell to or below rollback threshold"
		result.Action = CanaryActionRollback
		result.DisableTier2 = t.FallbackTier == "tier1"
	}
	return result
}

// DeriveTargetClass computes the spec §4.E log field.
func (t *Tier3State) DeriveTargetClass() TargetClass {
	if !t.Enabled {
		return TargetClassDisabled
	}
	if t.Status == Tier3StatusFallback {
		if t.FallbackTier == "tier1" {
			return TargetClassHighFriction
		}
		return TargetClassErrorSurface
	}
	return TargetClassStandard
}
