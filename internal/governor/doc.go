// doc.go — Package documentation for the parallelism governor.

// Package governor implements component F: a per-session adaptive
// concurrency cap derived from host memory/RSS/queue-age pressure, with
// hysteresis so recovery from pressure is gradual while degradation is
// immediate (spec §4.F).
//
// effectiveCap is backed by a golang.org/x/sync/semaphore.Weighted sized
// to staticCap at construction. A semaphore's total weight is fixed, so a
// drop in effectiveCap is modeled by the governor acquiring the
// difference for itself and never releasing it back (heldBack) instead
// of resizing anything; growth releases that held-back weight. If a
// shrink can't be fully acquired immediately (every unit is in use by an
// admitted caller), the shortfall is tracked as pendingShrink and
// absorbed a unit at a time as callers release their slots.
package governor
