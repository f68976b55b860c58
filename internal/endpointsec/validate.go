// validate.go — endpoint URL parsing, protocol allow-list, local-host check
// (spec §4.J).
package endpointsec

import (
	"net/url"
	"strings"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// allowedSchemes is the protocol allow-list: ws:, wss:, http:, https:.
var allowedSchemes = map[string]bool{
	"ws":    true,
	"wss":   true,
	"http":  true,
	"https": true,
}

// localHosts is the exact (case-insensitive) set of hosts treated as local.
// Substring matches ("127.0.0.1.evil.com", "localhost.evil.com") must not
// satisfy this set — membership is checked against the full host only.
var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"[::1]":     true,
}

// Validate checks raw as a CDP-like endpoint URL. allowNonLocal permits a
// host outside localHosts to pass, per the explicit opt-in spec §4.J
// requires ("Non-local endpoints are only permitted if allowNonLocalCdp is
// explicitly enabled").
func Validate(raw string, allowNonLocal bool) error {
	if raw == "" {
		return gaserr.New(gaserr.KindNonLocalEndpoint, "endpoint URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return gaserr.Wrap(gaserr.KindNonLocalEndpoint, "endpoint URL is unparsable", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return gaserr.New(gaserr.KindNonLocalEndpoint, "endpoint URL is unparsable")
	}

	scheme := strings.ToLower(u.Scheme)
	if !allowedSchemes[scheme] {
		return gaserr.New(gaserr.KindDisallowedProtocol, "endpoint protocol \""+u.Scheme+"\" is not allowed")
	}

	host := strings.ToLower(u.Hostname())
	// url.Hostname() strips brackets from an IPv6 literal; restore the
	// bracketed form for the ::1 membership check since that's how
	// localHosts spells it.
	if strings.Contains(u.Host, "[") {
		host = "[" + host + "]"
	}

	if localHosts[host] {
		return nil
	}
	if allowNonLocal {
		return nil
	}
	return gaserr.New(gaserr.KindNonLocalEndpoint, "endpoint host \""+u.Hostname()+"\" is not local; set allowNonLocalCdp to permit it")
}
