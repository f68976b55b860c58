package governor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

func testCfg() config.ParallelismConfig {
	return config.ParallelismConfig{
		Floor:                  1,
		RecoveryStableWindows:  3,
		HostFreeMemMediumPct:   20,
		HostFreeMemHighPct:     10,
		HostFreeMemCriticalPct: 5,
		RssSoftPct:             70,
		RssHighPct:             85,
		RssCriticalPct:         95,
		QueueAgeHighMs:         2000,
		QueueAgeCriticalMs:     5000,
		ModeCaps:               config.ModeCaps{ManagedHeadless: 8},
	}
}

func TestDegradationIsImmediate(t *testing.T) {
	g := New(testCfg(), "managed", true, false)
	require.Equal(t, 8, g.EffectiveCap())

	state := g.Sample(Sample{HostFreeMemPct: 3}) // critical
	require.Equal(t, PressureCritical, state.LastPressure)
	require.Equal(t, 1, state.EffectiveCap)
}

func TestRecoveryRequiresConsecutiveHealthyWindows(t *testing.T) {
	g := New(testCfg(), "managed", true, false)
	g.Sample(Sample{HostFreeMemPct: 3}) // drop to floor (1)

	for i := 0; i < 2; i++ {
		state := g.Sample(Sample{HostFreeMemPct: 100})
		require.Equal(t, 1, state.EffectiveCap, "must not recover before recoveryStableWindows reached")
	}
	state := g.Sample(Sample{HostFreeMemPct: 100})
	require.Equal(t, 2, state.EffectiveCap, "recovers by exactly 1 once threshold reached")
}

func TestHealthyWindowsResetsOnNonHealthySample(t *testing.T) {
	g := New(testCfg(), "managed", true, false)
	g.Sample(Sample{HostFreeMemPct: 3})
	g.Sample(Sample{HostFreeMemPct: 100})
	g.Sample(Sample{HostFreeMemPct: 100})
	state := g.Sample(Sample{HostFreeMemPct: 15}) // medium, non-healthy
	require.Equal(t, PressureMedium, state.LastPressure)
	require.Equal(t, 0, state.HealthyWindows)
}

func TestModeVariantDerivation(t *testing.T) {
	require.Equal(t, ModeManagedHeaded, DeriveModeVariant("managed", false, false))
	require.Equal(t, ModeCdpConnectHeadless, DeriveModeVariant("cdp-connect", true, false))
	require.Equal(t, ModeExtensionLegacyCdpHeaded, DeriveModeVariant("extension-relay", false, true))
	require.Equal(t, ModeExtensionOpsHeaded, DeriveModeVariant("extension-relay", false, false))
}
