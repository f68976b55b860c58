// manager.go — session lifecycle across managed/cdp-connect/extension-
// relay modes (spec §4.H launch/connect/connectRelay/disconnect/closeAll).
package session

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gasoline-dev/gasoline-broker/internal/blocker"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/endpointsec"
	"github.com/gasoline-dev/gasoline-broker/internal/fingerprint"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
	"github.com/gasoline-dev/gasoline-broker/internal/governor"
	"github.com/gasoline-dev/gasoline-broker/internal/refstore"
	"github.com/gasoline-dev/gasoline-broker/internal/relay"
	"github.com/gasoline-dev/gasoline-broker/internal/scheduler"
	"github.com/gasoline-dev/gasoline-broker/internal/state"
	"github.com/gasoline-dev/gasoline-broker/internal/target"
	"github.com/gasoline-dev/gasoline-broker/internal/telemetry"
	"github.com/gasoline-dev/gasoline-broker/internal/tracker"
)

// LaunchOpts mirrors the CLI's global flags that affect a managed launch
// (spec §6).
type LaunchOpts struct {
	Profile        string
	Headless       bool
	PersistProfile bool
	ChromePath     string
	ExtraFlags     []string
	Lang           string
	Timezone       string
	ProxyServer    string
}

// Launch starts a new managed-mode session: resolves the profile
// directory, launches a persistent browser, and initializes components
// A-G (spec §4.H "launch(opts)").
func (m *Manager) Launch(ctx context.Context, opts LaunchOpts) (Result, error) {
	requestID := uuid.NewString()
	log := m.log.With("requestId", requestID)

	return timed(requestID, func() (any, error) {
		sessionID := uuid.NewString()

		profileDir, owned, err := resolveProfileDir(opts, sessionID)
		if err != nil {
			return nil, err
		}

		drv := m.newDriver()
		page, err := drv.LaunchPersistent(ctx, profileDir, opts.Headless, opts.ExtraFlags)
		if err != nil {
			cleanupErr := cleanupProfile(profileDir, owned)
			translated := classifyDriverError(err)
			if cleanupErr != nil {
				return nil, gaserr.NewAggregate(translated, cleanupErr)
			}
			return nil, translated
		}

		sess := m.newSession(sessionID, ModeManaged, opts.Headless, false, drv, profileDir, owned, log)
		sess.Registry.Register(page, "")

		derived := fingerprint.LaunchDerived{
			Locale:    opts.Lang,
			Timezone:  opts.Timezone,
			Languages: splitNonEmpty(opts.Lang),
			ProxySet:  opts.ProxyServer != "",
		}
		sess.Fingerprint = fingerprint.New(sessionID, m.cfg.Fingerprint, derived, log)
		if !sess.Fingerprint.Tier1.OK {
			log.Warn("fingerprint.tier1.mismatch", "sessionId", sessionID, "issues", sess.Fingerprint.Tier1.Issues)
		}

		m.mu.Lock()
		m.sessions[sessionID] = sess
		m.mu.Unlock()

		return map[string]any{"sessionId": sessionID, "targetId": sess.Registry.GetActive()}, nil
	})
}

// ConnectOpts describes a direct CDP-connect-mode session.
type ConnectOpts struct {
	WsEndpoint       string
	AllowNonLocalCdp bool
}

// Connect attaches to an existing browser over CDP (spec §4.H
// "connect(opts)"): the endpoint is validated via component J before the
// driver ever dials it.
func (m *Manager) Connect(ctx context.Context, opts ConnectOpts) (Result, error) {
	requestID := uuid.NewString()
	log := m.log.With("requestId", requestID)

	return timed(requestID, func() (any, error) {
		if err := endpointsec.Validate(opts.WsEndpoint, opts.AllowNonLocalCdp); err != nil {
			return nil, err
		}

		drv := m.newDriver()
		if err := drv.ConnectCDP(ctx, opts.WsEndpoint); err != nil {
			return nil, classifyDriverError(err)
		}

		pages, err := drv.Pages(ctx)
		if err != nil {
			return nil, classifyDriverError(err)
		}

		sessionID := uuid.NewString()
		sess := m.newSession(sessionID, ModeCdpConnect, true, false, drv, "", false, log)
		for _, p := range pages {
			sess.Registry.Register(p, "")
		}
		if sess.Registry.GetActive() == "" && len(pages) == 0 {
			p, err := drv.NewPage(ctx)
			if err != nil {
				return nil, classifyDriverError(err)
			}
			sess.Registry.Register(p, "")
		}
		sess.Fingerprint = fingerprint.New(sessionID, m.cfg.Fingerprint, fingerprint.LaunchDerived{}, log)

		m.mu.Lock()
		m.sessions[sessionID] = sess
		m.mu.Unlock()

		return map[string]any{"sessionId": sessionID, "targetId": sess.Registry.GetActive()}, nil
	})
}

// RelayOpts describes an extension-relay-mode session.
type RelayOpts struct {
	BaseURL         string
	ExtensionLegacy bool // true to use the legacy /cdp path instead of /ops
}

// extensionPageWaitTimeout bounds how long Connect waits for the
// extension to surface a page when none exists yet (spec §4.H "wait up
// to 8s for a page event").
const extensionPageWaitTimeout = 8 * time.Second

// ConnectRelay bootstraps an extension-relay-mode session: resolves the
// relay endpoint (component I), connects, and waits for an initial page
// if none is yet available (spec §4.H "connectRelay(ws)").
func (m *Manager) ConnectRelay(ctx context.Context, opts RelayOpts) (Result, error) {
	requestID := uuid.NewString()
	log := m.log.With("requestId", requestID)

	return timed(requestID, func() (any, error) {
		path := relay.PathOps
		if opts.ExtensionLegacy {
			path = relay.PathCDP
		}
		bootstrap := relay.NewBootstrap(path)
		if err := bootstrap.Resolve(ctx, opts.BaseURL); err != nil {
			return nil, err
		}

		sessionID := uuid.NewString()
		client, err := bootstrap.Connect(ctx, func(evt relay.AsyncEvent) {
			m.handleAsyncRelayEvent(sessionID, evt)
		})
		if err != nil {
			return nil, err
		}

		drv := m.newDriver()
		sess := m.newSession(sessionID, ModeExtensionRelay, true, opts.ExtensionLegacy, drv, "", false, log)
		sess.RelayBootstrap = bootstrap
		sess.OpsClient = client

		page, err := m.waitForExtensionPage(ctx, drv)
		if err != nil {
			_ = bootstrap.Close()
			return nil, err
		}
		sess.Registry.Register(page, "")

		sess.Fingerprint = fingerprint.New(sessionID, m.cfg.Fingerprint, fingerprint.LaunchDerived{}, log)

		m.mu.Lock()
		m.sessions[sessionID] = sess
		m.mu.Unlock()

		return map[string]any{"sessionId": sessionID, "targetId": sess.Registry.GetActive()}, nil
	})
}

// waitForExtensionPage polls for a page the extension has surfaced,
// failing with guidance if none arrives in time (spec §4.H "if none,
// fail with guidance").
func (m *Manager) waitForExtensionPage(ctx context.Context, drv driver.Driver) (driver.Page, error) {
	deadline := time.Now().Add(extensionPageWaitTimeout)
	for {
		pages, err := drv.Pages(ctx)
		if err == nil && len(pages) > 0 {
			return preferHTTPPage(pages), nil
		}
		if time.Now().After(deadline) {
			return driver.Page{}, gaserr.New(gaserr.KindExtensionTargetReadyTimeout,
				"no browser tab appeared within 8s; open a tab and ensure the extension is active")
		}
		select {
		case <-ctx.Done():
			return driver.Page{}, gaserr.Wrap(gaserr.KindCancelled, "cancelled while waiting for an extension tab", ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// preferHTTPPage selects a stable http(s) page when available (spec §4.H
// "select a stable http(s) tab as active when available"); the driver
// abstraction does not expose scheme directly here, so this simply
// returns the first page — the driver is expected to only surface
// navigable pages via Pages().
func preferHTTPPage(pages []driver.Page) driver.Page {
	return pages[0]
}

func (m *Manager) handleAsyncRelayEvent(sessionID string, evt relay.AsyncEvent) {
	switch evt.Type {
	case "ops_session_closed", "ops_session_expired":
		_ = m.Disconnect(context.Background(), sessionID, false)
	case "ops_tab_closed":
		m.log.Info("relay.tab_closed", "sessionId", sessionID)
	}
}

// newSession builds a Session with components A-G initialized, but does
// not register it with the Manager.
func (m *Manager) newSession(sessionID string, mode Mode, headless, extensionLegacy bool, drv driver.Driver, profileDir string, profileOwned bool, log *telemetry.Logger) *Session {
	gov := governor.New(m.cfg.Parallelism, string(mode), headless, extensionLegacy)
	return &Session{
		ID:              sessionID,
		Mode:            mode,
		Headless:        headless,
		ExtensionLegacy: extensionLegacy,
		Driver:          drv,
		ProfileDir:      profileDir,
		ProfileOwned:    profileOwned,
		Registry:        target.New(drv),
		Refs:            refstore.New(),
		Console:         tracker.NewConsoleTrackerWithRedactor(defaultRingCapacity, m.cfg.Devtools.ShowFullConsole, m.redactor.Redact),
		Network:         tracker.NewNetworkTrackerWithRedactor(defaultRingCapacity, m.cfg.Devtools.ShowFullUrls, m.redactor.Redact),
		Exception:       tracker.NewExceptionTracker(defaultRingCapacity),
		Blocker:         blocker.New(int64(m.cfg.BlockerResolutionTimeoutMs)),
		Governor:        gov,
		Scheduler:       scheduler.New(gov),
		cfg:             m.cfg,
		log:             log,
	}
}

const defaultRingCapacity = 500

func resolveProfileDir(opts LaunchOpts, sessionID string) (dir string, owned bool, err error) {
	if opts.PersistProfile && opts.Profile != "" {
		dir, err = state.NamedProfileDir(opts.Profile)
		if err != nil {
			return "", false, gaserr.Wrap(gaserr.KindInvalidInput, "invalid profile name", err)
		}
		return dir, false, nil
	}
	dir, err = state.EphemeralProfileDir(sessionID)
	if err != nil {
		return "", false, fmt.Errorf("create ephemeral profile dir: %w", err)
	}
	return dir, true, nil
}

// cleanupProfile removes an owned (ephemeral) profile dir with bounded
// retries, per spec §4.H "remove the profile dir with bounded retries".
func cleanupProfile(dir string, owned bool) error {
	if !owned || dir == "" {
		return nil
	}
	var lastErr error
	for i := 0; i < 3; i++ {
		if err := os.RemoveAll(dir); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("remove profile dir %s: %w", dir, lastErr)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
