// doc.go — Package documentation for the fingerprint pipeline.

// Package fingerprint implements component E: a three-tier
// coherence/runtime/adaptive pipeline (spec §4.E). Tier1 is a one-shot
// coherence check at session start; Tier2 is a runtime profile advanced
// by network events; Tier3 is a canary window that promotes or rolls
// back Tier2 based on a sliding average of Tier2 outcomes. A single
// watermark, lastAppliedNetworkSeq, guards against double-application
// when both the continuous subscription and a debug-trace snapshot
// request the same apply path (spec §9 "Fingerprint state mutated from
// two sources").
package fingerprint
