// doc.go — Package documentation for relay transport.

// Package relay implements component I: resolving a relay's CDP/ops/
// annotation endpoints, the pairing handshake, and the ops-client
// request/response correlation layer used when a session runs through an
// extension relay instead of a direct CDP connection (spec §4.I).
package relay
