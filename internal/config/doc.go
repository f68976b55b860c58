// doc.go — Package documentation for the JSONC configuration cascade.

// Package config resolves the scheduler's configuration document (spec §6):
// a JSONC file (comments and trailing commas tolerated) merged over
// built-in defaults, then over environment variables, then over CLI flag
// overrides — the same priority cascade shape as the teacher's
// cmd/gasoline-cmd/config/loader.go, rebuilt on tailscale/hujson so the
// "comments permitted, trailing commas tolerated" requirement is actually
// met (encoding/json alone rejects both).
package config
