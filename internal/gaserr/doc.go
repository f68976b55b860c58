// doc.go — Package documentation for the scheduler's error-kind taxonomy.

// Package gaserr defines the tagged error kinds the session-and-target
// scheduler returns to callers, plus the aggregate type used to collect
// cleanup failures without losing the original error (spec §7).
//
// Driver-surface errors are never restated here by pattern-matching their
// message text at the call site; each component that owns a classification
// (session teardown, relay bootstrap, endpoint validation, ...) builds its
// own small classifier next to the code it classifies and returns a *Error
// with the matching Kind. gaserr itself only knows the Kind vocabulary and
// how to wrap/aggregate.
package gaserr
