// Package session implements the Session Manager (spec §4.H, component
// H): lifecycle across the three operating modes, composing the target
// registry (A), reference store (B), event trackers (C), blocker FSM (D),
// fingerprint pipeline (E), parallelism governor (F), and target-scoped
// scheduler (G) behind the public operation surface request producers
// (CLI, daemon RPC, script runner, ops relay) call into.
package session
