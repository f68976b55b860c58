// validate.go — cookie record validation and normalization (spec §4.H
// cookieImport/cookieList rules).
package cookie

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
)

// namePattern matches a non-empty cookie name containing no whitespace,
// ";", or "=".
var namePattern = regexp.MustCompile(`^[^\s;=]+$`)

// Record is one caller-supplied cookie to import, before validation.
type Record struct {
	Name     string
	Value    string
	URL      string // used only when Domain is empty
	Domain   string // takes precedence over URL when both are set
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  float64 // -1 means session cookie; must be finite and >= -1
	SameSite string  // "Strict" | "Lax" | "None" | ""
}

// Rejection names which input record failed and why.
type Rejection struct {
	Index  int
	Record Record
	Reason string
}

// validateOne checks one record and returns the normalized driver.Cookie, or
// a non-empty reason string if invalid.
func validateOne(r Record) (driver.Cookie, string) {
	if r.Name == "" || !namePattern.MatchString(r.Name) {
		return driver.Cookie{}, "name must be non-empty and contain no whitespace, \";\", or \"=\""
	}
	if strings.ContainsAny(r.Value, "\r\n;") {
		return driver.Cookie{}, "value must not contain CR, LF, or \";\""
	}

	hasURL := r.URL != ""
	hasDomain := r.Domain != ""
	if !hasURL && !hasDomain {
		return driver.Cookie{}, "at least one of url or domain must be set"
	}

	out := driver.Cookie{
		Name:     r.Name,
		Value:    r.Value,
		Secure:   r.Secure,
		HTTPOnly: r.HTTPOnly,
		Expires:  r.Expires,
		SameSite: r.SameSite,
	}

	// domain takes precedence when a record sets both, since domain+path
	// is the more specific targeting mechanism.
	if hasDomain {
		if strings.Contains(r.Domain, "..") {
			return driver.Cookie{}, "domain must not contain \"..\""
		}
		path := r.Path
		if path == "" {
			path = "/"
		}
		if !strings.HasPrefix(path, "/") {
			return driver.Cookie{}, "path must start with \"/\""
		}
		out.Domain = strings.ToLower(r.Domain)
		out.Path = path
	} else {
		parsed, err := url.Parse(r.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return driver.Cookie{}, "url must be http or https"
		}
		out.URL = r.URL
	}

	if math.IsNaN(r.Expires) || math.IsInf(r.Expires, 0) || r.Expires < -1 {
		return driver.Cookie{}, "expires must be finite and >= -1"
	}

	if r.SameSite == "None" && !r.Secure {
		return driver.Cookie{}, "SameSite=None requires Secure=true"
	}

	return out, ""
}

// Normalize validates every record, returning the accepted, normalized
// cookies and a Rejection for each invalid one, preserving input order.
func Normalize(records []Record) (accepted []driver.Cookie, rejected []Rejection) {
	for i, r := range records {
		c, reason := validateOne(r)
		if reason != "" {
			rejected = append(rejected, Rejection{Index: i, Record: r, Reason: reason})
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted, rejected
}
