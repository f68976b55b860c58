package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

func TestClassifyDriverErrorKnownPatterns(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		kind gaserr.Kind
	}{
		{"unauthorized", "request failed: 401 unauthorized", gaserr.KindRelayUnauthorized},
		{"profile lock", "profile directory already in use", gaserr.KindProfileLocked},
		{"detached frame", "cannot evaluate: detached frame", gaserr.KindDetachedFrame},
		{"extension not ready", "extension target not ready", gaserr.KindExtensionTargetReadyTimeout},
		{"stale extension", "stale extension tab", gaserr.KindExtensionTargetReadyClosed},
		{"target not allowed", "creating a new tab is not allowed for this target", gaserr.KindExtensionTargetNotAllowed},
		{"unknown ref", "ref abc123 not found", gaserr.KindUnknownRef},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyDriverError(errors.New(c.msg))
			require.Equal(t, c.kind, gaserr.KindOf(got))
		})
	}
}

func TestClassifyDriverErrorPassesThroughUnrecognized(t *testing.T) {
	original := errors.New("something unrelated broke")
	got := classifyDriverError(original)
	require.Equal(t, original, got)
}

func TestClassifyDriverErrorPassesThroughAlreadyStructured(t *testing.T) {
	original := gaserr.New(gaserr.KindTimeout, "already tagged")
	got := classifyDriverError(original)
	require.Equal(t, original, got)
}

func TestClassifyDriverErrorNilIsNil(t *testing.T) {
	require.NoError(t, classifyDriverError(nil))
}
