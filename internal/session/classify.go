// classify.go — translates known driver-surface error substrings into
// tagged gaserr kinds, isolating the pattern matching spec §9 calls out
// ("Driver errors as strings... isolate pattern matching in a classifier
// module") the same way internal/bridge.IsConnectionError prefers a
// typed check before falling back to substring matching.
package session

import (
	"strings"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// classifyDriverError rewrites err into an actionable gaserr.Error when it
// matches one of the known patterns; otherwise err is returned unchanged
// (spec §7 "errors from driver operations propagate to the caller unless
// they are specifically classified above").
func classifyDriverError(err error) error {
	if err == nil {
		return nil
	}
	if gaserr.KindOf(err) != "" {
		return err // already a structured error, nothing to translate
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return gaserr.Wrap(gaserr.KindRelayUnauthorized, "the endpoint rejected the connection as unauthorized", err)
	case strings.Contains(msg, "profile") && (strings.Contains(msg, "lock") || strings.Contains(msg, "already in use") || strings.Contains(msg, "singleton")):
		return gaserr.Wrap(gaserr.KindProfileLocked,
			"another browser instance is using this profile; use `--profile <name>` or `--persist-profile false`", err)
	case strings.Contains(msg, "detached frame"):
		return gaserr.Wrap(gaserr.KindDetachedFrame, "the target frame detached before the operation completed", err)
	case strings.Contains(msg, "extension") && strings.Contains(msg, "not ready"):
		return gaserr.Wrap(gaserr.KindExtensionTargetReadyTimeout, "the extension relay's target is not ready yet", err)
	case strings.Contains(msg, "stale") && strings.Contains(msg, "extension"):
		return gaserr.Wrap(gaserr.KindExtensionTargetReadyClosed, "the extension's tab closed before the operation completed", err)
	case strings.Contains(msg, "not allowed") && strings.Contains(msg, "target"):
		return gaserr.Wrap(gaserr.KindExtensionTargetNotAllowed, "creating a new target is not permitted in this mode", err)
	case strings.Contains(msg, "ref") && (strings.Contains(msg, "stale") || strings.Contains(msg, "not found") || strings.Contains(msg, "unknown")):
		return gaserr.Wrap(gaserr.KindUnknownRef, "ref is stale; take a new snapshot before retrying", err)
	default:
		return err
	}
}
