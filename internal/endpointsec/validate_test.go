package endpointsec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

func TestValidateAcceptsLocalHosts(t *testing.T) {
	for _, raw := range []string{
		"ws://localhost:9222/devtools/browser/abc",
		"ws://127.0.0.1:9222/devtools/browser/abc",
		"ws://[::1]:9222/devtools/browser/abc",
		"http://LOCALHOST:9222/json/version",
		"https://127.0.0.1:9222/json/version",
	} {
		require.NoError(t, Validate(raw, false), raw)
	}
}

func TestValidateRejectsSubstringTricks(t *testing.T) {
	for _, raw := range []string{
		"ws://127.0.0.1.evil.com",
		"ws://localhost.evil.com",
		"ws://evil.com?host=127.0.0.1",
	} {
		err := Validate(raw, false)
		require.Error(t, err, raw)
		require.Equal(t, gaserr.KindNonLocalEndpoint, gaserr.KindOf(err), raw)
	}
}

func TestValidateRejectsDisallowedProtocol(t *testing.T) {
	err := Validate("ftp://127.0.0.1/cdp", false)
	require.Error(t, err)
	require.Equal(t, gaserr.KindDisallowedProtocol, gaserr.KindOf(err))
}

func TestValidateRejectsUnparsable(t *testing.T) {
	err := Validate("not-a-url", false)
	require.Error(t, err)
	require.Equal(t, gaserr.KindNonLocalEndpoint, gaserr.KindOf(err))
}

func TestValidateAllowsNonLocalWhenOptedIn(t *testing.T) {
	require.NoError(t, Validate("wss://relay.example.com:443/cdp", true))
}

func TestValidateRejectsNonLocalByDefault(t *testing.T) {
	err := Validate("wss://relay.example.com:443/cdp", false)
	require.Error(t, err)
	require.Equal(t, gaserr.KindNonLocalEndpoint, gaserr.KindOf(err))
}
