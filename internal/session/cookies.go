// cookies.go — cookieImport/cookieList wrappers over internal/cookie,
// routed through the session's driver and the manager's audit trail
// (spec §4.H).
package session

import (
	"context"

	"github.com/gasoline-dev/gasoline-broker/internal/cookie"
)

// CookieImport validates and imports cookie records for sessionID,
// recording the outcome in the audit trail (spec §4.H cookieImport).
func (m *Manager) CookieImport(ctx context.Context, sessionID string, records []cookie.Record, strict bool) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		imported, rejected, err := cookie.Import(ctx, sess.Driver, m.audit, sessionID, records, strict)
		if err != nil {
			return nil, err
		}
		return map[string]any{"imported": imported, "rejected": rejected}, nil
	})
}

// CookieList returns every cookie the session's driver currently holds
// (spec §4.H cookieList).
func (m *Manager) CookieList(ctx context.Context, sessionID string) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		cookies, err := cookie.List(ctx, sess.Driver)
		if err != nil {
			return nil, err
		}
		return cookies, nil
	})
}
