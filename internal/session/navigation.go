// navigation.go — goto/waitForLoad/waitForRef: target-scoped navigation
// reconciled against the blocker FSM (spec §4.H, §4.D).
package session

import (
	"context"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/blocker"
)

// reconcileBlocker reads the current title/url for targetID (best-effort)
// and feeds it through the blocker FSM, marking verifier when the calling
// operation counts as evidence of resolution (spec §4.D).
func (s *Session) reconcileBlocker(ctx context.Context, targetID string, verifier bool) blocker.Snapshot {
	page, resolvedID, err := s.Registry.GetPage(targetID)
	if err != nil {
		return s.Blocker.Snapshot()
	}
	title, _ := s.Driver.Title(ctx, page)
	url, _ := s.Driver.URL(ctx, page)

	input := blocker.ClassifierInput{
		Source:             "navigation",
		URL:                url,
		FinalURL:           url,
		Title:              title,
		PromptGuardEnabled: s.cfg.Security.PromptInjectionGuard.Enabled,
	}
	return s.Blocker.Reconcile(blocker.DefaultClassifier, blocker.Reconciliation{
		ActiveTargetID: resolvedID,
		Input:          input,
		Verifier:       verifier,
	})
}

// Goto navigates targetID (or the active target) to url, serialized
// per-target through the scheduler, then reconciles the blocker FSM
// treating navigation completion as verifier evidence (spec §4.D
// "navigation complete" is a verifier).
func (m *Manager) Goto(ctx context.Context, sessionID, targetID, url string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	_, resolvedID, err := sess.Registry.GetPage(targetID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}

	_, err = sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
		page, _, perr := sess.Registry.GetPage(resolvedID)
		if perr != nil {
			return nil, perr
		}
		if err := sess.Driver.Navigate(opCtx, page, url); err != nil {
			return nil, classifyDriverError(err)
		}
		sess.Refs.OnFrameNavigated(resolvedID, "") // top-frame nav: clear refs (spec §4.B)
		return nil, nil
	})
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, err
	}

	snap := sess.reconcileBlocker(ctx, resolvedID, true)
	return Result{
		Value:     map[string]any{"navigated": url, "targetId": resolvedID},
		TimingMs:  time.Since(start).Milliseconds(),
		Blocker:   blockerMetaFrom(snap),
		RequestID: requestID,
	}, nil
}

// WaitForLoad waits for targetID's page to finish loading, a verifier
// operation for the blocker FSM (spec §4.D).
func (m *Manager) WaitForLoad(ctx context.Context, sessionID, targetID string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	_, resolvedID, err := sess.Registry.GetPage(targetID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}

	_, err = sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
		page, _, perr := sess.Registry.GetPage(resolvedID)
		if perr != nil {
			return nil, perr
		}
		return nil, sess.Driver.WaitForLoad(opCtx, page, time.Duration(timeoutMs)*time.Millisecond)
	})
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, classifyDriverError(err)
	}

	snap := sess.reconcileBlocker(ctx, resolvedID, true)
	return Result{
		Value:     map[string]any{"loaded": true, "targetId": resolvedID},
		TimingMs:  time.Since(start).Milliseconds(),
		Blocker:   blockerMetaFrom(snap),
		RequestID: requestID,
	}, nil
}

// WaitForRef waits for a ref to resolve to a live element, treating a
// successful resolution as verifier evidence (spec §4.D "waitForRef with
// success").
func (m *Manager) WaitForRef(ctx context.Context, sessionID, targetID, ref string, timeoutMs int) (Result, error) {
	requestID := newRequestID()
	start := time.Now()

	sess, err := m.Get(sessionID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}
	_, resolvedID, err := sess.Registry.GetPage(targetID)
	if err != nil {
		return Result{RequestID: requestID}, err
	}

	entry, err := sess.Refs.Resolve(resolvedID, ref)
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, err
	}

	_, err = sess.Scheduler.RunTargetScoped(ctx, resolvedID, timeoutMs, func(opCtx context.Context) (any, error) {
		page, _, perr := sess.Registry.GetPage(resolvedID)
		if perr != nil {
			return nil, perr
		}
		_, evalErr := sess.Driver.Evaluate(opCtx, page, entry.BackendNodeID, "")
		return nil, evalErr
	})
	if err != nil {
		return Result{TimingMs: time.Since(start).Milliseconds(), RequestID: requestID}, classifyDriverError(err)
	}

	snap := sess.reconcileBlocker(ctx, resolvedID, true)
	return Result{
		Value:     map[string]any{"ref": ref, "resolved": true},
		TimingMs:  time.Since(start).Milliseconds(),
		Blocker:   blockerMetaFrom(snap),
		RequestID: requestID,
	}, nil
}
