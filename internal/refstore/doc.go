// doc.go — Package documentation for the per-target reference store.

// Package refstore implements component B: a per-target mapping from
// snapshot ref to {selector, backendNodeId}, invalidated whenever that
// target's top frame navigates or the page closes (spec §4.B). Ownership
// is single-writer per target, matching spec §5's "Ref store ... owned by
// the session" model.
package refstore
