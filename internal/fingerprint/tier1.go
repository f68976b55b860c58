// tier1.go — one-shot coherence evaluation at session start (spec §4.E).
package fingerprint

import (
	"fmt"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
)

// LaunchDerived holds the values actually derived from launch flags,
// to compare against Tier1Config's expectations.
type LaunchDerived struct {
	Locale      string
	Timezone    string
	Languages   []string
	ProxySet    bool
	Geolocation *config.GeoPoint
}

// Tier1Result is the one-shot coherence evaluation outcome.
type Tier1Result struct {
	OK       bool
	Issues   []string
	Warnings []string
}

// EvaluateTier1 combines expected values from cfg with values derived
// from launch flags and reports mismatches. When cfg.WarnOnly is set,
// mismatches are downgraded from Issues to Warnings so they never block
// launch (spec §4.H "emit tier1 mismatch warning").
func EvaluateTier1(cfg config.Tier1Config, derived LaunchDerived) Tier1Result {
	if !cfg.Enabled {
		return Tier1Result{OK: true}
	}

	var mismatches []string

	if cfg.Locale != "" && cfg.Locale != derived.Locale {
		mismatches = append(mismatches, fmt.Sprintf("locale mismatch: expected %q, got %q", cfg.Locale, derived.Locale))
	}
	if cfg.Timezone != "" && cfg.Timezone != derived.Timezone {
		mismatches = append(mismatches, fmt.Sprintf("timezone mismatch: expected %q, got %q", cfg.Timezone, derived.Timezone))
	}
	if len(cfg.Languages) > 0 && !sameLanguages(cfg.Languages, derived.Languages) {
		mismatches = append(mismatches, "languages mismatch between configured and derived values")
	}
	if cfg.RequireProxy && !derived.ProxySet {
		mismatches = append(mismatches, "proxy required but none configured at launch")
	}
	if cfg.GeolocationRequired && derived.Geolocation == nil {
		mismatches = append(mismatches, "geolocation required but none provided")
	}
	if cfg.Geolocation != nil && derived.Geolocation != nil {
		if cfg.Geolocation.Latitude != derived.Geolocation.Latitude || cfg.Geolocation.Longitude != derived.Geolocation.Longitude {
			mismatches = append(mismatches, "geolocation mismatch between configured and derived values")
		}
	}

	result := Tier1Result{OK: len(mismatches) == 0}
	if cfg.WarnOnly {
		result.Warnings = mismatches
		result.OK = true
	} else {
		result.Issues = mismatches
	}
	return result
}

func sameLanguages(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
