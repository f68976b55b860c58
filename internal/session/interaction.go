// interaction.go — ref-bound interaction operations (snapshot, click,
// hover, press, check, uncheck, type, select, scroll, scrollIntoView,
// domGet*) layered over driver.Evaluate and the per-target scheduler
// (spec §4.H, §4.B).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
	"github.com/gasoline-dev/gasoline-broker/internal/refstore"
)

// snapshotScript extracts a flattened accessibility-style tree the caller
// can assign refs against; backendNodeId lets the driver resolve a ref
// straight back to its live DOM node without a second query (spec §4.B
// "a ref carries a selector plus the driver's backend node id").
const snapshotScript = `window.__gasolineSnapshot && window.__gasolineSnapshot()`

// snapshotNode is one entry in the flattened tree the snapshot script
// returns as JSON.
type snapshotNode struct {
	BackendNodeID int64  `json:"backendNodeId"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	Value         string `json:"value"`
	Selector      string `json:"selector"`
}

// Snapshot takes a fresh accessibility snapshot of targetID, assigning a
// ref to every node and replacing that target's prior refs (spec §4.B
// "a snapshot replaces every ref previously issued for that target").
func (m *Manager) Snapshot(ctx context.Context, sessionID, targetID string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	return timed(requestID, func() (any, error) {
		sess, err := m.Get(sessionID)
		if err != nil {
			return nil, err
		}
		_, resolvedID, err := sess.Registry.GetPage(targetID)
		if err != nil {
			return nil, err
		}

		v, err := sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
			page, _, perr := sess.Registry.GetPage(resolvedID)
			if perr != nil {
				return nil, perr
			}
			res, evalErr := sess.Driver.Evaluate(opCtx, page, 0, snapshotScript)
			if evalErr != nil {
				return nil, evalErr
			}
			return res, nil
		})
		if err != nil {
			return nil, classifyDriverError(err)
		}

		res := v.(driver.EvaluateResult)
		var nodes []snapshotNode
		if len(res.Value) > 0 {
			if err := json.Unmarshal(res.Value, &nodes); err != nil {
				return nil, gaserr.Wrap(gaserr.KindInvalidInput, "snapshot script returned malformed JSON", err)
			}
		}

		sess.Refs.ClearTarget(resolvedID)
		type refNode struct {
			Ref  string `json:"ref"`
			Role string `json:"role"`
			Name string `json:"name"`
		}
		out := make([]refNode, 0, len(nodes))
		for i, n := range nodes {
			ref := fmt.Sprintf("r%d", i+1)
			sess.Refs.Put(resolvedID, ref, refstore.Entry{Selector: n.Selector, BackendNodeID: n.BackendNodeID})
			out = append(out, refNode{Ref: ref, Role: n.Role, Name: n.Name})
		}
		return map[string]any{"targetId": resolvedID, "nodes": out}, nil
	})
}

// runOnRef resolves ref within targetID, runs script against its backend
// node through the scheduler, and returns the raw evaluate result.
func runOnRef(ctx context.Context, sess *Session, targetID, ref string, timeoutMs int, script string) ([]byte, error) {
	resolvedID, err := resolveTargetForRef(sess, targetID)
	if err != nil {
		return nil, err
	}
	entry, err := sess.Refs.Resolve(resolvedID, ref)
	if err != nil {
		return nil, err
	}

	v, err := withDetachedFrameRetry(ctx, sess, func() (any, error) {
		return sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
			page, _, perr := sess.Registry.GetPage(resolvedID)
			if perr != nil {
				return nil, perr
			}
			res, evalErr := sess.Driver.Evaluate(opCtx, page, entry.BackendNodeID, script)
			if evalErr != nil {
				return nil, evalErr
			}
			return res.Value, nil
		})
	})
	if err != nil {
		return nil, classifyDriverError(err)
	}
	return v.([]byte), nil
}

func resolveTargetForRef(sess *Session, targetID string) (string, error) {
	_, resolvedID, err := sess.Registry.GetPage(targetID)
	if err != nil {
		return "", err
	}
	return resolvedID, nil
}

// Click, Hover, Press, Check, Uncheck, Type, Select, Scroll,
// ScrollIntoView are thin script-generating wrappers over runOnRef (spec
// §4.H). Each is a single element action so no result value beyond
// success is returned.

func (m *Manager) Click(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, "el.click()")
}

func (m *Manager) Hover(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs,
		"el.dispatchEvent(new MouseEvent('mouseover', {bubbles: true}))")
}

func (m *Manager) Press(ctx context.Context, sessionID, targetID, ref, key string, timeoutMs int) (Result, error) {
	script := fmt.Sprintf("el.dispatchEvent(new KeyboardEvent('keydown', {key: %q, bubbles: true}))", key)
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, script)
}

func (m *Manager) Check(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, "el.checked = true")
}

func (m *Manager) Uncheck(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, "el.checked = false")
}

func (m *Manager) Type(ctx context.Context, sessionID, targetID, ref, text string, timeoutMs int) (Result, error) {
	script := fmt.Sprintf("el.value = %q; el.dispatchEvent(new Event('input', {bubbles: true}))", text)
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, script)
}

func (m *Manager) Select(ctx context.Context, sessionID, targetID, ref string, values []string, timeoutMs int) (Result, error) {
	encoded, err := json.Marshal(values)
	if err != nil {
		return Result{}, gaserr.Wrap(gaserr.KindInvalidInput, "select values must be JSON-encodable", err)
	}
	script := fmt.Sprintf("el.value = (%s)[0]; el.dispatchEvent(new Event('change', {bubbles: true}))", encoded)
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, script)
}

func (m *Manager) Scroll(ctx context.Context, sessionID, targetID, ref string, dx, dy int, timeoutMs int) (Result, error) {
	script := fmt.Sprintf("el.scrollBy(%d, %d)", dx, dy)
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs, script)
}

func (m *Manager) ScrollIntoView(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.refAction(ctx, sessionID, targetID, ref, timeoutMs,
		"el.scrollIntoView({block: 'center', inline: 'center'})")
}

// refAction runs script against ref and reports success; it discards the
// script's return value since these are fire-and-forget mutations.
func (m *Manager) refAction(ctx context.Context, sessionID, targetID, ref string, timeoutMs int, script string) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	wrapped := fmt.Sprintf("(function(){ const el = arguments[0] || document; %s; return null; })()", script)
	if _, err := runOnRef(ctx, sess, targetID, ref, timeoutMs, wrapped); err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, err
	}
	return Result{
		Value:     map[string]any{"ref": ref, "ok": true},
		TimingMs:  time.Since(start).Milliseconds(),
		RequestID: requestID,
	}, nil
}

// domGet is the shared implementation for domGetText/domGetAttribute/
// domGetHTML: run a read-only script and decode its JSON string result.
func (m *Manager) domGet(ctx context.Context, sessionID, targetID, ref, script string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	raw, err := runOnRef(ctx, sess, targetID, ref, timeoutMs, script)
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, err
	}
	var value string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &value)
	}
	return Result{
		Value:     map[string]any{"ref": ref, "value": value},
		TimingMs:  time.Since(start).Milliseconds(),
		RequestID: requestID,
	}, nil
}

func (m *Manager) DomGetText(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.domGet(ctx, sessionID, targetID, ref,
		"(function(){ const el = arguments[0]; return JSON.stringify(el ? el.textContent : null); })()", timeoutMs)
}

func (m *Manager) DomGetAttribute(ctx context.Context, sessionID, targetID, ref, attr string, timeoutMs int) (Result, error) {
	script := fmt.Sprintf(
		"(function(){ const el = arguments[0]; return JSON.stringify(el ? el.getAttribute(%q) : null); })()", attr)
	return m.domGet(ctx, sessionID, targetID, ref, script, timeoutMs)
}

func (m *Manager) DomGetHTML(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	return m.domGet(ctx, sessionID, targetID, ref,
		"(function(){ const el = arguments[0]; return JSON.stringify(el ? el.outerHTML : null); })()", timeoutMs)
}
