// doc.go — Package documentation for the target registry.

// Package target implements component A: the per-session map from opaque
// target ids to driver pages, the single active-target pointer, and
// optional unique human names (spec §4.A). Registry is single-writer,
// owned by the session that holds it, matching spec §5's ownership model
// for per-session state.
package target
