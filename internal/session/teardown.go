// teardown.go — disconnect/closeAll cleanup ordering and error
// aggregation (spec §4.H disconnect, §7 "Session state is ALWAYS removed
// on disconnect even if cleanup failed").
package session

import (
	"context"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// closeBrowserTimeout bounds the browser/context close race for
// non-managed modes (spec §4.H disconnect step 3: "close-browser for
// non-managed modes with a 5s race; warn on timeout").
const closeBrowserTimeout = 5 * time.Second

// Disconnect tears down sessionID in the documented order: per-page
// listeners, network-signal subscription, browser/context close, tracker
// detach, then (for non-persistent sessions) profile dir removal. Every
// step's error is collected; the session is always removed from the
// Manager regardless of cleanup outcome.
func (m *Manager) Disconnect(ctx context.Context, sessionID string, closeBrowser bool) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return gaserr.New(gaserr.KindInvalidSession, "unknown session")
	}

	var cleanupErrs []error

	sess.mu.Lock()
	cleanups := sess.cleanups
	sess.cleanups = nil
	sess.mu.Unlock()
	for _, fn := range cleanups {
		fn()
	}

	sess.Scheduler.Clear()

	if sess.OpsClient != nil {
		if err := sess.OpsClient.Close(); err != nil {
			cleanupErrs = append(cleanupErrs, err)
		}
	}
	if sess.RelayBootstrap != nil {
		if err := sess.RelayBootstrap.Close(); err != nil {
			cleanupErrs = append(cleanupErrs, err)
		}
	}

	if closeBrowser || sess.Mode != ModeManaged {
		closeCtx, cancel := context.WithTimeout(ctx, closeBrowserTimeout)
		done := make(chan error, 1)
		go func() { done <- sess.Driver.Close(closeCtx) }()
		select {
		case err := <-done:
			cancel()
			if err != nil {
				cleanupErrs = append(cleanupErrs, err)
			}
		case <-closeCtx.Done():
			cancel()
			sess.log.Warn("session.close.timeout", "sessionId", sessionID)
			// The close call may still complete later; we do not block
			// disconnect on it (spec §4.H "warn on timeout and detach
			// pending promise").
		}
	}

	if sess.ProfileOwned {
		if err := cleanupProfile(sess.ProfileDir, true); err != nil {
			cleanupErrs = append(cleanupErrs, err)
		}
	}

	return gaserr.NewAggregate(nil, cleanupErrs...)
}

// CloseAll disconnects every live session with closeBrowser=true,
// swallowing per-session failures (spec §4.H "closeAll").
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Disconnect(ctx, id, true); err != nil {
			m.log.Warn("session.closeall.failed", "sessionId", id, "error", err.Error())
		}
	}
}

// Get resolves sessionID to its live Session, or a session_terminated-
// style error if unknown.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, gaserr.New(gaserr.KindInvalidSession, "unknown session")
	}
	return sess, nil
}
