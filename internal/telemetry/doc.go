// doc.go — Package documentation for structured logging and request ids.

// Package telemetry provides the correlation-id and structured-event
// emission collaborator that spec §2 names as component K, consumed by
// components A–I.
//
// Every public scheduler operation is expected to derive one *Logger per
// call via Logger.With, carrying sessionId/targetId/requestId fields, so
// that a single JSON log line can be traced end to end through the target
// registry, the blocker FSM, and the fingerprint pipeline. This mirrors the
// teacher's internal/mcp id-presence handling (distinguishing an absent id
// from an explicit null) generalized from "one JSON-RPC id" to "one
// request id per scheduler call."
package telemetry
