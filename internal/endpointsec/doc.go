// doc.go — Package documentation for CDP endpoint validation.

// Package endpointsec validates CDP-like endpoint URLs before the driver is
// allowed to dial them (spec §4.J): protocol allow-listing and a
// case-insensitive, substring-trick-resistant localhost check, with an
// explicit opt-in for non-local endpoints.
package endpointsec
