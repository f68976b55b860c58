// doc.go — Package documentation for event trackers.

// Package tracker implements component C: three ring-buffered event
// trackers (console, network, exception) with monotonic per-tracker
// sequence numbers, redaction, and subscribe fan-out (spec §4.C). Each
// tracker wraps an internal/buffers.RingBuffer[T] and layers a seq-based
// poll contract plus live listener fan-out on top of it.
package tracker
