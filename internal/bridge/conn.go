// conn.go — connection error classification shared with the relay
// transport's reconnect loop (spec §4.I).
package bridge

import (
	"errors"
	"net"
	"strings"
)

// IsConnectionError returns true if the error indicates the peer is
// unreachable (refused, DNS failure, or a wrapped net error).
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	// Prefer typed error checks over string matching
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	// Fallback: string check for wrapped errors that lose type info
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}
