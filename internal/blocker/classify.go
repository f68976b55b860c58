// classify.go — default classifier over navigation/network evidence.
package blocker

import (
	"regexp"
	"strings"
)

var authTitlePattern = regexp.MustCompile(`(?i)\b(log.?in|sign.?in|authenticate|verify your identity)\b`)

var challengeTitlePattern = regexp.MustCompile(`(?i)\b(checking your browser|just a moment|attention required|are you human|verify you are a human)\b`)

// DefaultClassifier implements the built-in heuristics: auth walls by
// title pattern, anti-bot challenges by title pattern or matched
// network patterns, and upstream blocks by status code, per spec §4.D.
// PromptGuardEnabled and ProviderErrorCode widen detection when set.
func DefaultClassifier(in ClassifierInput) *Blocker {
	if len(in.MatchedPatterns) > 0 || challengeTitlePattern.MatchString(in.Title) {
		return &Blocker{Type: "anti_bot_challenge", Message: "an anti-bot challenge is blocking this page"}
	}
	if authTitlePattern.MatchString(in.Title) {
		return &Blocker{Type: "auth_required", Message: "this page requires authentication"}
	}
	if in.Status == 403 || in.Status == 429 || in.Status == 503 {
		return &Blocker{Type: "upstream_block", Message: "the upstream server is blocking this request"}
	}
	if in.ProviderErrorCode != "" {
		return &Blocker{Type: "upstream_block", Message: "provider reported: " + in.ProviderErrorCode}
	}
	if in.PromptGuardEnabled && containsInjectionMarker(in.Message) {
		return &Blocker{Type: "prompt_injection_guard", Message: "content flagged by the prompt-injection guard"}
	}
	return nil
}

func containsInjectionMarker(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "ignore previous instructions")
}
