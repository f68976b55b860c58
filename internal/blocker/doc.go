// doc.go — Package documentation for the blocker finite-state machine.

// Package blocker implements component D: a per-session state machine
// {clear, active, resolving} driven by a classifier over navigation and
// network evidence (spec §4.D). Transitions take an explicit
// reconciliation record (source, verifier?, includeArtifacts?) rather than
// threading an implicit verifier flag through call state, per the source
// pattern note in spec §9 ("Blocker FSM with verifier semantics").
package blocker
