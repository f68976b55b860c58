// tier2.go — runtime/adaptive profile advanced by network events (spec §4.E).
package fingerprint

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/buffers"
	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

// ChallengeEvent records one detected challenge (bounded ring).
type ChallengeEvent struct {
	URL    string
	Status int
	Ts     time.Time
}

// Tier2State is the runtime profile.
type Tier2State struct {
	Enabled         bool
	Mode            string
	ProfileID       string
	HealthScore     int
	ChallengeCount  int
	RotationCount   int
	LastRotationTs  time.Time

	cfg             config.Tier2Config
	patterns        []*regexp.Regexp
	challengeEvents *buffers.RingBuffer[ChallengeEvent]
}

// NewTier2 initializes Tier2 state {id="fp-"+random, healthScore=100, counters=0}.
func NewTier2(cfg config.Tier2Config) *Tier2State {
	id, err := randomProfileID()
	if err != nil {
		id = "fp-unknown"
	}
	capacity := cfg.MaxChallengeEvents
	if capacity <= 0 {
		capacity = 50
	}
	patterns := make([]*regexp.Regexp, 0, len(cfg.ChallengePatterns))
	for _, p := range cfg.ChallengePatterns {
		if re, err := regexp.Compile(p); err == nil {
			patterns = append(patterns, re)
		}
	}
	return &Tier2State{
		Enabled:         cfg.Enabled,
		Mode:            cfg.Mode,
		ProfileID:       id,
		HealthScore:     100,
		cfg:             cfg,
		patterns:        patterns,
		challengeEvents: buffers.NewRingBuffer[ChallengeEvent](capacity),
	}
}

func randomProfileID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "fp-" + hex.EncodeToString(b), nil
}

// ApplyResult is what one network-event application produced, for
// logging and for Tier3 canary sampling.
type ApplyResult struct {
	Challenged bool
	// HealthScore is this event's challenge-adjusted score, captured
	// before any rotation resets it back to 100 — the value Tier3's
	// canary must sample, since sampling the post-rotation score would
	// hide the very degradation that triggered the rotation (spec §4.E
	// step 2 samples "score derived from healthScore" for *this* event).
	HealthScore int
	Rotated     bool
	NewProfile  string
}

// Apply advances Tier2 state for one network event's URL/status, per
// spec §4.E step 1.
func (t *Tier2State) Apply(url string, status int) ApplyResult {
	if !t.Enabled {
		return ApplyResult{}
	}

	challenged := t.matchesChallenge(url, status)
	if challenged {
		t.challengeEvents.WriteOne(ChallengeEvent{URL: url, Status: status, Ts: time.Now()})
		t.HealthScore -= t.cfg.ScorePenalty
		t.ChallengeCount++
	} else {
		t.HealthScore += t.cfg.ScoreRecovery
		if t.HealthScore > 100 {
			t.HealthScore = 100
		}
	}

	result := ApplyResult{Challenged: challenged, HealthScore: t.HealthScore}

	if t.Mode == "adaptive" {
		dueToScore := t.HealthScore < t.cfg.RotationHealthThreshold
		dueToAge := t.cfg.RotationIntervalMs > 0 &&
			time.Since(t.LastRotationTs) >= time.Duration(t.cfg.RotationIntervalMs)*time.Millisecond
		if dueToScore || dueToAge {
			t.rotate()
			result.Rotated = true
			result.NewProfile = t.ProfileID
		}
	}
	return result
}

func (t *Tier2State) matchesChallenge(url string, status int) bool {
	for _, re := range t.patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return status >= 400 && status < 500
}

func (t *Tier2State) rotate() {
	id, err := randomProfileID()
	if err == nil {
		t.ProfileID = id
	}
	t.HealthScore = 100
	t.RotationCount++
	t.LastRotationTs = time.Now()
}

// ChallengeEvents returns the bounded ring's current contents.
func (t *Tier2State) ChallengeEvents() []ChallengeEvent {
	return t.challengeEvents.ReadAll()
}

func (t *Tier2State) String() string {
	return fmt.Sprintf("tier2{profile=%s score=%d challenges=%d rotations=%d}",
		t.ProfileID, t.HealthScore, t.ChallengeCount, t.RotationCount)
}
