// doc.go — Package documentation for the target-scoped scheduler.

// Package scheduler implements component G: a per-session FIFO queue per
// target, gated by governor admission slots with backpressure timeouts
// (spec §4.G). Admission (how many ops may run concurrently) and
// per-target ordering (ops on the same target run strictly in arrival
// order) are independent axes composed by RunTargetScoped: a call joins
// its target's promise chain immediately, then separately waits for an
// admission slot; it only executes once both are satisfied, per the
// "per-target promise chaining" strategy in spec §9.
package scheduler
