package blocker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClearToActiveOnDetection(t *testing.T) {
	f := New(60000)
	snap := f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com/i/flow/login"},
	})
	require.Equal(t, StateActive, snap.State)
	require.Equal(t, "auth_required", snap.Blocker.Type)
	require.Equal(t, "t1:x.com", snap.TargetKey)
}

func TestActiveToResolvingToClearOnVerifierPass(t *testing.T) {
	f := New(60000)
	f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com/login"},
	})

	snap := f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Example Domain", URL: "https://example.com"},
		Verifier:       true,
	})

	require.Equal(t, StateClear, snap.State)
	require.NotNil(t, snap.Resolution)
	require.Equal(t, ResolutionResolved, snap.Resolution.Status)
	require.Equal(t, ReasonVerifierPassed, snap.Resolution.Reason)
}

func TestRedetectionWhileResolvingReturnsToActive(t *testing.T) {
	f := New(60000)
	in := func(title string) Reconciliation {
		return Reconciliation{ActiveTargetID: "t1", Input: ClassifierInput{Title: title, URL: "https://x.com"}}
	}
	f.Reconcile(DefaultClassifier, in("Log in to X / X"))
	rec := in("Log in to X / X")
	rec.Verifier = true
	snap := f.Reconcile(DefaultClassifier, rec)
	require.Equal(t, StateActive, snap.State)
}

func TestVerificationTimeout(t *testing.T) {
	f := New(1) // 1ms timeout
	f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com"},
	})
	time.Sleep(5 * time.Millisecond)

	snap := f.CheckTimeout()
	require.Equal(t, StateActive, snap.State)
	require.NotNil(t, snap.Resolution)
	require.Equal(t, ReasonVerificationTimeout, snap.Resolution.Reason)
}

func TestMarkVerificationFailureDeferredOnEnvLimited(t *testing.T) {
	f := New(60000)
	f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com"},
	})
	snap := f.MarkVerificationFailure(true)
	require.Equal(t, ResolutionDeferred, snap.Resolution.Status)
	require.Equal(t, ReasonEnvLimited, snap.Resolution.Reason)
}

func TestManualClearAlwaysWorks(t *testing.T) {
	f := New(60000)
	f.Reconcile(DefaultClassifier, Reconciliation{
		ActiveTargetID: "t1",
		Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com"},
	})
	snap := f.ClearBlocker()
	require.Equal(t, StateClear, snap.State)
	require.Equal(t, ReasonManualClear, snap.Resolution.Reason)
}

func TestUpdatedAtMonotonicallyNonDecreasing(t *testing.T) {
	f := New(60000)
	var last int64
	for i := 0; i < 3; i++ {
		snap := f.Reconcile(DefaultClassifier, Reconciliation{
			ActiveTargetID: "t1",
			Input:          ClassifierInput{Title: "Log in to X / X", URL: "https://x.com"},
		})
		require.GreaterOrEqual(t, snap.UpdatedAtMs, last)
		last = snap.UpdatedAtMs
	}
}
