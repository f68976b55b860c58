// capture.go — clonePage/cloneComponent: serialize the live DOM (or one
// ref's subtree) to a static HTML snapshot suitable for exporting (spec
// §4.H).
package session

import (
	"context"
	"encoding/json"
	"time"
)

const clonePageScript = `(function(){
	const doctype = document.doctype
		? '<!DOCTYPE ' + document.doctype.name + '>'
		: '';
	return JSON.stringify(doctype + document.documentElement.outerHTML);
})()`

const cloneComponentScript = `(function(){
	const el = arguments[0];
	return JSON.stringify(el ? el.outerHTML : null);
})()`

// ClonePage serializes targetID's full document to static HTML.
func (m *Manager) ClonePage(ctx context.Context, sessionID, targetID string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	resolvedID, err := resolveTargetForRef(sess, targetID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}

	v, err := sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
		page, _, perr := sess.Registry.GetPage(resolvedID)
		if perr != nil {
			return nil, perr
		}
		res, evalErr := sess.Driver.Evaluate(opCtx, page, 0, clonePageScript)
		if evalErr != nil {
			return nil, evalErr
		}
		return res.Value, nil
	})
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, classifyDriverError(err)
	}

	var html string
	_ = json.Unmarshal(v.([]byte), &html)
	return Result{
		Value:     map[string]any{"targetId": resolvedID, "html": html},
		TimingMs:  time.Since(start).Milliseconds(),
		RequestID: requestID,
	}, nil
}

// CloneComponent serializes one ref's subtree to static HTML.
func (m *Manager) CloneComponent(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	raw, err := runOnRef(ctx, sess, targetID, ref, timeoutMs, cloneComponentScript)
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, err
	}
	var html string
	_ = json.Unmarshal(raw, &html)
	return Result{
		Value:     map[string]any{"ref": ref, "html": html},
		TimingMs:  time.Since(start).Milliseconds(),
		RequestID: requestID,
	}, nil
}
