// pipeline.go — orchestrates Tier1/Tier2/Tier3 over the network tracker's
// event stream, guarded by a single watermark (spec §4.E, §9).
package fingerprint

import (
	"sync"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/telemetry"
)

// NetworkSample is the minimal shape the pipeline needs from a tracked
// network event to advance fingerprint state.
type NetworkSample struct {
	Seq    int64
	URL    string
	Status int
	// IsResponse restricts Tier2 application to response legs, since
	// status codes are only known once a response arrives.
	IsResponse bool
}

// Pipeline composes Tier1's one-shot result with the live Tier2/Tier3
// state, advanced by network events ordered by seq (spec §3 Fingerprint
// state "lastAppliedNetworkSeq").
type Pipeline struct {
	mu sync.Mutex

	Tier1 Tier1Result
	Tier2 *Tier2State
	Tier3 *Tier3State

	lastAppliedNetworkSeq int64

	sessionID string
	log       *telemetry.Logger
}

// New builds the pipeline: evaluates Tier1 once, then initializes Tier2
// and Tier3 state (spec §4.E "Initialization").
func New(sessionID string, cfg config.FingerprintConfig, derived LaunchDerived, log *telemetry.Logger) *Pipeline {
	if log == nil {
		log = telemetry.Nop()
	}
	return &Pipeline{
		Tier1:     EvaluateTier1(cfg.Tier1, derived),
		Tier2:     NewTier2(cfg.Tier2),
		Tier3:     NewTier3(cfg.Tier3, "default"),
		sessionID: sessionID,
		log:       log,
	}
}

// ApplyNetworkEvents advances Tier2/Tier3 over events ordered by seq,
// skipping anything at or below the watermark so the continuous
// subscription and a debug-trace snapshot can both call this safely
// without double-applying (idempotent w.r.t. lastAppliedNetworkSeq).
func (p *Pipeline) ApplyNetworkEvents(events []NetworkSample) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range events {
		if e.Seq <= p.lastAppliedNetworkSeq || !e.IsResponse {
			continue
		}
		p.applyOneLocked(e)
		p.lastAppliedNetworkSeq = e.Seq
	}
}

func (p *Pipeline) applyOneLocked(e NetworkSample) {
	tier2Result := p.Tier2.Apply(e.URL, e.Status)
	if tier2Result.Rotated {
		p.log.Info("fingerprint.tier2.rotate",
			"sessionId", p.sessionID, "profile", tier2Result.NewProfile)
	}

	if !p.Tier3.Enabled || !p.Tier2.Enabled {
		return
	}
	tier3Result := p.Tier3.Apply(tier2Result.HealthScore, tier2Result.Challenged,
		p.Tier2.ChallengeCount, p.Tier2.RotationCount)

	targetClass := p.Tier3.DeriveTargetClass()
	switch tier3Result.Action {
	case CanaryActionPromote:
		p.log.Info("fingerprint.tier3.promote",
			"sessionId", p.sessionID, "score", tier3Result.AverageScore,
			"samples", tier3Result.SampleCount, "targetClass", targetClass)
	case CanaryActionRollback:
		if tier3Result.DisableTier2 {
			p.Tier2.Enabled = false
		}
		p.log.Warn("fingerprint.tier3.rollback",
			"sessionId", p.sessionID, "score", tier3Result.AverageScore,
			"samples", tier3Result.SampleCount, "targetClass", targetClass,
			"fallbackReason", p.Tier3.FallbackReason)
	}
}

// LastAppliedNetworkSeq reports the watermark for debug-trace snapshots.
func (p *Pipeline) LastAppliedNetworkSeq() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAppliedNetworkSeq
}

// Snapshot is the read-only view returned by debugTraceSnapshot (spec §4.H).
type Snapshot struct {
	Tier1 Tier1Result
	Tier2 Tier2Snapshot
	Tier3 Tier3Snapshot
}

type Tier2Snapshot struct {
	Enabled        bool
	Mode           string
	ProfileID      string
	HealthScore    int
	ChallengeCount int
	RotationCount  int
}

type Tier3Snapshot struct {
	Enabled      bool
	Status       Tier3Status
	AverageScore float64
	Level        int
	TargetClass  TargetClass
}

func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Tier1: p.Tier1,
		Tier2: Tier2Snapshot{
			Enabled:        p.Tier2.Enabled,
			Mode:           p.Tier2.Mode,
			ProfileID:      p.Tier2.ProfileID,
			HealthScore:    p.Tier2.HealthScore,
			ChallengeCount: p.Tier2.ChallengeCount,
			RotationCount:  p.Tier2.RotationCount,
		},
		Tier3: Tier3Snapshot{
			Enabled:      p.Tier3.Enabled,
			Status:       p.Tier3.Status,
			AverageScore: p.Tier3.AverageScore,
			Level:        p.Tier3.Level,
			TargetClass:  p.Tier3.DeriveTargetClass(),
		},
	}
}
