// redact.go — console text and network URL redaction rules (spec §4.C).
package tracker

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gasoline-dev/gasoline-broker/internal/util"
)

// RedactorFunc is a pluggable secondary redaction pass applied after a
// tracker's own rules below. It lets internal/redaction.RedactionEngine's
// broader secret-pattern list be swapped in per ShowFullConsole/ShowFullUrls
// without either tracker branching on that engine's internals (spec §4.C).
type RedactorFunc func(string) string

// consolePatterns mirrors internal/redaction's compiled-pattern style but
// implements the tracker-specific rule set from spec §4.C rather than the
// generic secrets list used for MCP tool responses.
var (
	kvPattern = regexp.MustCompile(
		`(?i)(token|key|secret|password|auth|bearer|credential)(\s*[:=]\s*)(\S+)`)
	jwtPattern       = regexp.MustCompile(`[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	prefixedKeyWord  = regexp.MustCompile(`\b(sk_|pk_|api_|key_|token_|secret_|bearer_)[A-Za-z0-9_-]+\b`)
	longEntropyWord  = regexp.MustCompile(`\b[A-Za-z0-9_-]{16,}\b`)
	uuidLike         = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	purelyNumeric    = regexp.MustCompile(`^[0-9]+$`)
	pathSegmentToken = regexp.MustCompile(`[A-Za-z0-9_-]{16,}`)
)

// redactConsoleText applies the four console redaction rules in order. It
// is a no-op when showFull is true (config.Devtools.ShowFullConsole).
func redactConsoleText(text string, showFull bool) string {
	if showFull || text == "" {
		return text
	}
	out := kvPattern.ReplaceAllString(text, "$1$2[REDACTED]")
	out = jwtPattern.ReplaceAllStringFunc(out, func(m string) string {
		if strings.Count(m, ".") == 2 {
			return "[REDACTED]"
		}
		return m
	})
	out = prefixedKeyWord.ReplaceAllString(out, "[REDACTED]")
	out = longEntropyWord.ReplaceAllStringFunc(out, func(m string) string {
		if hasTwoCharClasses(m) {
			return "[REDACTED]"
		}
		return m
	})
	return out
}

// hasTwoCharClasses reports whether word mixes at least two of
// {lower, upper, digit, separator} character classes (spec §4.C rule iv).
func hasTwoCharClasses(word string) bool {
	var lower, upper, digit, sep bool
	for _, r := range word {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '_' || r == '-':
			sep = true
		}
	}
	count := 0
	for _, b := range []bool{lower, upper, digit, sep} {
		if b {
			count++
		}
	}
	return count >= 2
}

// redactNetworkURL strips query+hash and replaces token-like path segments
// with [REDACTED], preserving UUIDs and purely-numeric segments. Invalid
// URLs fall back to plain-text query stripping via util.ExtractURLPath.
func redactNetworkURL(raw string, showFull bool) string {
	if showFull || raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return util.ExtractURLPath(raw)
	}

	segments := strings.Split(parsed.Path, "/")
	for i, seg := range segments {
		if seg == "" || uuidLike.MatchString(seg) || purelyNumeric.MatchString(seg) {
			continue
		}
		segments[i] = pathSegmentToken.ReplaceAllString(seg, "[REDACTED]")
	}

	origin := parsed.Scheme + "://" + parsed.Host
	if parsed.Scheme == "" || parsed.Host == "" {
		origin = ""
	}
	return origin + strings.Join(segments, "/")
}
