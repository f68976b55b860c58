// bootstrap.go — the explicit Resolved → PairingRequired → Paired →
// Connected state machine spec §9 asks for in place of the two-network-
// dependency dance resolveRelayEndpoint otherwise hides implicitly.
package relay

import (
	"context"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// BootstrapState names one stage of the relay connection sequence.
type BootstrapState string

const (
	StateResolved        BootstrapState = "resolved"
	StatePairingRequired BootstrapState = "pairing_required"
	StatePaired          BootstrapState = "paired"
	StateConnected       BootstrapState = "connected"
)

// Bootstrap drives one session's relay connection through its states,
// recording the last reached state for callers that want to report
// progress or retry from a specific stage.
type Bootstrap struct {
	State BootstrapState
	Path  Path

	endpoint ResolvedEndpoint
	conn     *OpsClient
}

// NewBootstrap starts a bootstrap for path, not yet resolved.
func NewBootstrap(path Path) *Bootstrap {
	return &Bootstrap{Path: path}
}

// Resolve performs /config (and /pair if required), advancing through
// Resolved and PairingRequired/Paired as appropriate.
func (b *Bootstrap) Resolve(ctx context.Context, baseURL string) error {
	endpoint, err := ResolveEndpoint(ctx, baseURL, b.Path)
	if err != nil {
		return err
	}
	b.endpoint = endpoint
	if b.State == "" {
		b.State = StateResolved
	}
	// ResolveEndpoint itself performs the pairing round trip when
	// required; by the time it returns successfully the bootstrap is
	// always at least Paired (PairingRequired is an internal substate of
	// ResolveEndpoint, surfaced here only via its error kinds:
	// relay_pairing_mismatch / relay_pairing_token_missing).
	b.State = StatePaired
	return nil
}

// Connect dials the resolved endpoint and advances to Connected.
// onAsyncEvent receives ops_session_closed/ops_session_expired/
// ops_tab_closed events for the session manager's bookkeeping.
func (b *Bootstrap) Connect(ctx context.Context, onAsyncEvent func(AsyncEvent)) (*OpsClient, error) {
	if b.State != StatePaired && b.State != StateResolved {
		return nil, gaserr.New(gaserr.KindRelayUnavailable, "bootstrap must be resolved before connecting")
	}
	client, err := Dial(ctx, b.endpoint.URL, onAsyncEvent)
	if err != nil {
		return nil, err
	}
	b.conn = client
	b.State = StateConnected
	return client, nil
}

// Close tears down the underlying connection, if any, and resets state.
func (b *Bootstrap) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	b.State = StateResolved
	return err
}
