// errors.go — Tagged error kinds and the cleanup-failed aggregate (spec §7).
package gaserr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names one of the error categories spec §7 enumerates. Kinds are
// compared by value, not by string-matching an error's message.
type Kind string

const (
	KindInvalidInput               Kind = "invalid_input"
	KindUnknownRef                 Kind = "unknown_ref"
	KindNoActiveTarget             Kind = "no_active_target"
	KindSessionTerminated          Kind = "session_terminated"
	KindInvalidSession             Kind = "invalid_session"
	KindNonLocalEndpoint           Kind = "non_local_endpoint"
	KindDisallowedProtocol         Kind = "disallowed_protocol"
	KindRelayUnauthorized          Kind = "relay_unauthorized"
	KindRelayUnavailable           Kind = "relay_unavailable"
	KindRelayPairingMismatch       Kind = "relay_pairing_mismatch"
	KindRelayPairingTokenMissing   Kind = "relay_pairing_token_missing"
	KindExtensionTargetNotAllowed  Kind = "extension_target_not_allowed"
	KindExtensionTargetReadyTimeout Kind = "extension_target_ready_timeout"
	KindExtensionTargetReadyClosed Kind = "extension_target_ready_closed"
	KindDetachedFrame              Kind = "detached_frame"
	KindBackpressureTimeout        Kind = "backpressure_timeout"
	KindProfileLocked              Kind = "profile_locked"
	KindCleanupFailed              Kind = "cleanup_failed"
	KindDirectUnavailable          Kind = "direct_unavailable"
	KindDirectFailed               Kind = "direct_failed"
	KindTimeout                    Kind = "timeout"
	KindCancelled                  Kind = "cancelled"
)

// Error is the structured error every scheduler operation may return: a
// Kind suitable for a caller to switch on, and a Message suitable for
// displaying to a human (spec §7 "every operation returns ... a success
// record ... or an error carrying a kind and a message").
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target carries the same Kind, so callers can write
// `errors.Is(err, gaserr.New(gaserr.KindUnknownRef, ""))`-style checks, but
// the idiomatic path is KindOf(err) == gaserr.KindUnknownRef.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err is nil or not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Aggregate collects zero or more cleanup errors alongside one primary
// error, per spec §7 "Cleanup errors are aggregated at the end." An
// Aggregate with no cleanup errors behaves like the primary error alone;
// Error() always enumerates every error it was given, primary first, so
// the original cause is never silently swallowed (KindCleanupFailed only
// reports multiple; a single cleanup failure keeps its own kind).
type Aggregate struct {
	Primary error
	Cleanup []error
}

// NewAggregate builds an aggregate if there is anything to aggregate.
// When primary is nil and cleanup is empty, NewAggregate returns nil.
// When there is exactly one error in total, that error is returned
// unwrapped rather than boxed in an Aggregate.
func NewAggregate(primary error, cleanup ...error) error {
	var filtered []error
	for _, e := range cleanup {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	switch {
	case primary == nil && len(filtered) == 0:
		return nil
	case primary == nil && len(filtered) == 1:
		return filtered[0]
	case primary != nil && len(filtered) == 0:
		return primary
	default:
		return &Aggregate{Primary: primary, Cleanup: filtered}
	}
}

func (a *Aggregate) Error() string {
	var parts []string
	if a.Primary != nil {
		parts = append(parts, a.Primary.Error())
	}
	for _, e := range a.Cleanup {
		parts = append(parts, e.Error())
	}
	return New(KindCleanupFailed, strings.Join(parts, "; ")).Error()
}

func (a *Aggregate) Unwrap() error { return a.Primary }
