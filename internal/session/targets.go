// targets.go — thin wrappers around the target registry (component A)
// with extension-mode retry/fallback special cases (spec §4.H).
package session

import (
	"context"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
	"github.com/gasoline-dev/gasoline-broker/internal/target"
)

// detachedFrameRetryDelay is how long to wait before retrying an
// operation that failed with a detached-frame error once (spec §4.H
// "retry detached-frame errors once after ~200ms").
const detachedFrameRetryDelay = 200 * time.Millisecond

// withDetachedFrameRetry runs fn once, and again after
// detachedFrameRetryDelay if it failed with KindDetachedFrame — only in
// extension-relay mode, where a frame detaching mid-call is common and
// usually transient.
func withDetachedFrameRetry(ctx context.Context, sess *Session, fn func() (any, error)) (any, error) {
	v, err := fn()
	if err == nil || sess.Mode != ModeExtensionRelay {
		return v, err
	}
	if gaserr.KindOf(classifyDriverError(err)) != gaserr.KindDetachedFrame {
		return v, err
	}
	select {
	case <-time.After(detachedFrameRetryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return fn()
}

// Page resolves targetID (or the active target) to its page-scoped
// identity; callers use this to confirm a target exists before a
// multi-step interaction.
func (m *Manager) Page(sessionID, targetID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		_, id, err := sess.Registry.GetPage(targetID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"targetId": id}, nil
	})
}

// NewTarget opens a fresh tab, falling back to reusing the active tab
// when the driver/relay does not permit creating a new target (spec
// §4.H "fall back to reusing the active tab when target creation is not
// permitted").
func (m *Manager) NewTarget(ctx context.Context, sessionID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}

		v, err := withDetachedFrameRetry(ctx, sess, func() (any, error) {
			p, err := sess.Driver.NewPage(ctx)
			return p, err
		})
		if err != nil {
			translated := classifyDriverError(err)
			if gaserr.KindOf(translated) == gaserr.KindExtensionTargetNotAllowed {
				active := sess.Registry.GetActive()
				if active != "" {
					return map[string]any{"targetId": active, "reused": true}, nil
				}
			}
			return nil, translated
		}

		page := v.(driver.Page)
		id, err := sess.Registry.Register(page, "")
		if err != nil {
			return nil, err
		}
		sess.Registry.SetActive(id)
		return map[string]any{"targetId": id, "reused": false}, nil
	})
}

// ListPages returns every registered target (spec §4.H "listPages").
func (m *Manager) ListPages(ctx context.Context, sessionID string, includeURLs bool) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		return sess.Registry.List(ctx, includeURLs), nil
	})
}

// ClosePage closes targetID, invalidating its refs (spec §4.A/§4.B).
func (m *Manager) ClosePage(ctx context.Context, sessionID, targetID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if err := sess.Registry.Close(ctx, targetID); err != nil {
			return nil, classifyDriverError(err)
		}
		sess.Refs.ClearTarget(targetID)
		return map[string]any{"closed": targetID}, nil
	})
}

// UseTarget makes targetID the session's active target.
func (m *Manager) UseTarget(sessionID, targetID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if err := sess.Registry.SetActive(targetID); err != nil {
			return nil, err
		}
		return map[string]any{"active": targetID}, nil
	})
}

// ListTargets is an alias over the registry for named-target listing.
func (m *Manager) ListTargets(sessionID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		return sess.Registry.ListNamed(), nil
	})
}

// CloseTarget is ClosePage's named-operation alias (spec §4.H lists both
// closePage and closeTarget as thin registry wrappers).
func (m *Manager) CloseTarget(ctx context.Context, sessionID, targetID string) (Result, error) {
	return m.ClosePage(ctx, sessionID, targetID)
}

// SetTargetName / RemoveTargetName expose the registry's naming
// operations (spec §4.A setName/removeName).
func (m *Manager) SetTargetName(sessionID, targetID, name string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if err := sess.Registry.SetName(targetID, name); err != nil {
			return nil, err
		}
		return map[string]any{"targetId": targetID, "name": name}, nil
	})
}

func (m *Manager) RemoveTargetName(sessionID, targetID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if err := sess.Registry.RemoveName(targetID); err != nil {
			return nil, err
		}
		return map[string]any{"targetId": targetID}, nil
	})
}

// target.Info re-exported for callers that only import internal/session.
type TargetInfo = target.Info
