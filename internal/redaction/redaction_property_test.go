// redaction_property_test.go — Property-based tests for redaction engine.

package redaction

import (
	"testing"
	"testing/quick"
)

// TestPropertyRedactIdempotent verifies that Redact(Redact(s)) == Redact(s) for all strings.
func TestPropertyRedactIdempotent(t *testing.T) {
	engine := NewRedactionEngine("")

	f := func(s string) bool {
		first := engine.Redact(s)
		second := engine.Redact(first)
		return first == second
	}

	cfg := &quick.Config{MaxCount: 1000}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

// TestPropertyLuhnDeterminism verifies that luhnValid always returns the same result
// for the same input.
func TestPropertyLuhnDeterminism(t *testing.T) {
	f := func(s string) bool {
		// Call luhnValid twice with the same input
		first := luhnValid(s)
		second := luhnValid(s)

		// Results must be identical
		return first == second
	}

	cfg := &quick.Config{MaxCount: 1000}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

// TestPropertyRedactLengthBound verifies that redaction never produces output
// longer than input + some reasonable overhead for replacement tokens.
func TestPropertyRedactLengthBound(t *testing.T) {
	engine := NewRedactionEngine("")

	f := func(s string) bool {
		redacted := engine.Redact(s)
		// Redaction should not massively inflate the string.
		// Allow up to 10x growth to account for replacement patterns.
		maxLen := len(s)*10 + 1000
		return len(redacted) <= maxLen
	}

	cfg := &quick.Config{MaxCount: 1000}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

// TestPropertyRedactEmptyString verifies that redacting an empty string returns empty string.
func TestPropertyRedactEmptyString(t *testing.T) {
	engine := NewRedactionEngine("")

	result := engine.Redact("")
	if result != "" {
		t.Errorf("Redact(\"\") = %q, want \"\"", result)
	}
}

// TestPropertyLuhnValidEmptyString verifies luhnValid behavior on empty input.
func TestPropertyLuhnValidEmptyString(t *testing.T) {
	result := luhnValid("")
	if result {
		t.Error("luhnValid(\"\") = true, want false")
	}
}
