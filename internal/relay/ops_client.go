// ops_client.go — ops-relay request/response correlation and async event
// delivery (spec §4.I).
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// envelope is the wire shape every ops frame carries, correlated by
// requestId (spec §4.I "frames a JSON message with requestId").
type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	LeaseID   string          `json:"leaseId,omitempty"`
	Command   string          `json:"command,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *opsError       `json:"error,omitempty"`
}

type opsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AsyncEvent is one of ops_session_closed, ops_session_expired, or
// ops_tab_closed, delivered to the session manager for bookkeeping.
type AsyncEvent struct {
	Type      string
	SessionID string
	Payload   json.RawMessage
}

type pendingRequest struct {
	resultCh chan envelope
}

// OpsClient owns one ops-relay websocket connection and correlates
// request/response frames by requestId.
type OpsClient struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending map[string]*pendingRequest
	closed  bool

	onAsyncEvent func(AsyncEvent)
}

// Dial opens the ops-relay websocket at wsURL and starts its read loop.
// onAsyncEvent is invoked (on the read-loop goroutine) for every frame that
// is not a correlated response.
func Dial(ctx context.Context, wsURL string, onAsyncEvent func(AsyncEvent)) (*OpsClient, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 401 {
			return nil, gaserr.New(gaserr.KindRelayUnauthorized, "relay rejected the ops connection as unauthorized")
		}
		return nil, gaserr.Wrap(gaserr.KindRelayUnavailable, "failed dialing ops relay", err)
	}

	c := &OpsClient{
		conn:         conn,
		pending:      make(map[string]*pendingRequest),
		onAsyncEvent: onAsyncEvent,
	}
	go c.readLoop()
	return c, nil
}

var asyncEventTypes = map[string]bool{
	"ops_session_closed":  true,
	"ops_session_expired": true,
	"ops_tab_closed":      true,
}

func (c *OpsClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.failAllPending(gaserr.Wrap(gaserr.KindRelayUnavailable, "ops relay connection closed", err))
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		if asyncEventTypes[env.Type] {
			if c.onAsyncEvent != nil {
				c.onAsyncEvent(AsyncEvent{Type: env.Type, SessionID: env.SessionID, Payload: env.Payload})
			}
			continue
		}

		if env.RequestID == "" {
			continue
		}
		c.mu.Lock()
		req, ok := c.pending[env.RequestID]
		if ok {
			delete(c.pending, env.RequestID)
		}
		c.mu.Unlock()
		if ok {
			req.resultCh <- env
		}
	}
}

func (c *OpsClient) failAllPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	failure := envelope{Type: "ops_error", Error: &opsError{Code: string(gaserr.KindOf(err)), Message: err.Error()}}
	for id, req := range c.pending {
		req.resultCh <- failure
		delete(c.pending, id)
	}
}

// Request sends command/payload with an optional sessionId/leaseId,
// resolving on a matching ops_response and rejecting on ops_error
// (including not_owner when leaseId does not match the server-held lease),
// or timing out after timeoutMs (spec §4.I).
func (c *OpsClient) Request(ctx context.Context, command string, payload json.RawMessage, sessionID, leaseID string, timeoutMs int) (json.RawMessage, error) {
	requestID := uuid.NewString()
	pending := &pendingRequest{resultCh: make(chan envelope, 1)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, gaserr.New(gaserr.KindRelayUnavailable, "ops relay connection is closed")
	}
	c.pending[requestID] = pending
	c.mu.Unlock()

	frame := envelope{
		Type:      "ops_request",
		RequestID: requestID,
		SessionID: sessionID,
		LeaseID:   leaseID,
		Command:   command,
		Payload:   payload,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		c.removePending(requestID)
		return nil, gaserr.Wrap(gaserr.KindInvalidInput, "failed encoding ops request", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.removePending(requestID)
		return nil, gaserr.Wrap(gaserr.KindRelayUnavailable, "failed sending ops request", err)
	}

	var timeoutCh <-chan time.Time
	if timeoutMs > 0 {
		timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case env := <-pending.resultCh:
		if env.Error != nil {
			if env.Error.Code == "not_owner" {
				return nil, gaserr.New(gaserr.KindRelayUnauthorized, "not_owner: leaseId does not match the server-held lease")
			}
			return nil, gaserr.New(gaserr.KindRelayUnavailable, fmt.Sprintf("%s: %s", env.Error.Code, env.Error.Message))
		}
		return env.Payload, nil
	case <-timeoutCh:
		c.removePending(requestID)
		return nil, gaserr.New(gaserr.KindTimeout, "ops request timed out waiting for a response")
	case <-ctx.Done():
		c.removePending(requestID)
		return nil, gaserr.Wrap(gaserr.KindCancelled, "ops request cancelled", ctx.Err())
	}
}

func (c *OpsClient) removePending(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// Close closes the underlying websocket connection.
func (c *OpsClient) Close() error {
	return c.conn.Close()
}
