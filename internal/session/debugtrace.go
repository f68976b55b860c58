// debugtrace.go — debugTraceSnapshot: a point-in-time bundle of console,
// network, and exception activity plus fingerprint/blocker state, used
// by callers that want a single diagnostic read instead of polling each
// tracker separately (spec §4.C, §4.E, §4.H).
package session

import (
	"context"

	"github.com/gasoline-dev/gasoline-broker/internal/blocker"
	"github.com/gasoline-dev/gasoline-broker/internal/fingerprint"
	"github.com/gasoline-dev/gasoline-broker/internal/tracker"
)

// DebugTraceCursor carries the caller's last-seen sequence per tracker so
// repeated calls only return new events (spec §4.C "poll(sinceSeq, max)").
type DebugTraceCursor struct {
	ConsoleSeq   int64
	NetworkSeq   int64
	ExceptionSeq int64
}

// DebugTraceResult bundles everything debugTraceSnapshot returns.
type DebugTraceResult struct {
	Console        tracker.PollResult[tracker.ConsoleEvent]
	Network        tracker.PollResult[tracker.NetworkEvent]
	Exception      tracker.PollResult[tracker.ExceptionEvent]
	Fingerprint    fingerprint.Snapshot
	Blocker        blocker.Snapshot
	NextCursor     DebugTraceCursor
	ArtifactsIncluded bool
}

// DebugTraceSnapshot polls every tracker since cursor, feeds fresh
// network events into the fingerprint pipeline (idempotent via its
// watermark, so this is safe to call alongside the live subscription),
// and reconciles the blocker FSM — optionally carrying artifacts when the
// caller asks for them (spec §4.D Reconciliation.IncludeArtifacts).
func (m *Manager) DebugTraceSnapshot(ctx context.Context, sessionID, targetID string, cursor DebugTraceCursor, includeArtifacts bool, maxEvents int) (Result, error) {
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

		consolePoll := sess.Console.Poll(cursor.ConsoleSeq, maxEvents)
		networkPoll := sess.Network.Poll(cursor.NetworkSeq, maxEvents)
		exceptionPoll := sess.Exception.Poll(cursor.ExceptionSeq, maxEvents)

		samples := make([]fingerprint.NetworkSample, 0, len(networkPoll.Events))
		for _, e := range networkPoll.Events {
			samples = append(samples, fingerprint.NetworkSample{
				Seq:        e.Seq,
				URL:        e.Payload.URL,
				Status:     e.Payload.Status,
				IsResponse: e.Payload.IsResponse,
			})
		}
		sess.Fingerprint.ApplyNetworkEvents(samples)

		snap := sess.reconcileBlocker(ctx, resolvedID, false)

		return DebugTraceResult{
			Console:           consolePoll,
			Network:           networkPoll,
			Exception:         exceptionPoll,
			Fingerprint:       sess.Fingerprint.Snapshot(),
			Blocker:           snap,
			ArtifactsIncluded: includeArtifacts,
			NextCursor: DebugTraceCursor{
				ConsoleSeq:   consolePoll.NextSeq,
				NetworkSeq:   networkPoll.NextSeq,
				ExceptionSeq: exceptionPoll.NextSeq,
			},
		}, nil
	})
}
