package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

func testConfig() config.FingerprintConfig {
	return config.FingerprintConfig{
		Tier1: config.Tier1Config{Enabled: true, WarnOnly: true},
		Tier2: config.Tier2Config{
			Enabled:                 true,
			Mode:                    "adaptive",
			ChallengePatterns:       []string{"challenge"},
			MaxChallengeEvents:      10,
			ScorePenalty:            95,
			ScoreRecovery:           5,
			RotationHealthThreshold: 50,
		},
		Tier3: config.Tier3Config{
			Enabled:      true,
			FallbackTier: "tier1",
			Canary: config.CanaryConfig{
				WindowSize:        2,
				MinSamples:        1,
				PromoteThreshold:  80,
				RollbackThreshold: 40,
			},
		},
	}
}

func TestTier3RollbackDisablesTier2WhenFallbackTierOne(t *testing.T) {
	p := New("s1", testConfig(), LaunchDerived{}, nil)

	p.ApplyNetworkEvents([]NetworkSample{
		{Seq: 1, URL: "https://example.com/challenge", Status: 200, IsResponse: true},
	})

	snap := p.Snapshot()
	require.Equal(t, Tier3StatusFallback, snap.Tier3.Status)
	require.False(t, snap.Tier2.Enabled)
	require.Equal(t, TargetClassHighFriction, snap.Tier3.TargetClass)
}

func TestApplyIsIdempotentOverSameSeq(t *testing.T) {
	p := New("s1", testConfig(), LaunchDerived{}, nil)
	events := []NetworkSample{{Seq: 1, URL: "https://example.com/ok", Status: 200, IsResponse: true}}

	p.ApplyNetworkEvents(events)
	first := p.Snapshot()
	p.ApplyNetworkEvents(events) // same events reapplied
	second := p.Snapshot()

	require.Equal(t, first.Tier2.HealthScore, second.Tier2.HealthScore)
	require.Equal(t, int64(1), p.LastAppliedNetworkSeq())
}

func TestApplySkipsNonResponseEvents(t *testing.T) {
	p := New("s1", testConfig(), LaunchDerived{}, nil)
	p.ApplyNetworkEvents([]NetworkSample{
		{Seq: 1, URL: "https://example.com/challenge", Status: 200, IsResponse: false},
	})
	require.Equal(t, int64(0), p.LastAppliedNetworkSeq())
}

func TestTier1WarnOnlyNeverFailsOK(t *testing.T) {
	cfg := config.Tier1Config{Enabled: true, WarnOnly: true, Locale: "en-US"}
	result := EvaluateTier1(cfg, LaunchDerived{Locale: "fr-FR"})
	require.True(t, result.OK)
	require.NotEmpty(t, result.Warnings)
	require.Empty(t, result.Issues)
}

func TestTier1StrictModeFailsOnMismatch(t *testing.T) {
	cfg := config.Tier1Config{Enabled: true, WarnOnly: false, Locale: "en-US"}
	result := EvaluateTier1(cfg, LaunchDerived{Locale: "fr-FR"})
	require.False(t, result.OK)
	require.NotEmpty(t, result.Issues)
}
