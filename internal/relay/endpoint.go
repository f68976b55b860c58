// endpoint.go — resolveRelayEndpoint: /config + optional /pair handshake
// (spec §4.I).
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/bridge"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// Path is one of the three relay surfaces a caller can resolve an endpoint
// for.
type Path string

const (
	PathCDP        Path = "cdp"
	PathOps        Path = "ops"
	PathAnnotation Path = "annotation"
)

type configResponse struct {
	RelayPort        int    `json:"relayPort"`
	PairingRequired  bool   `json:"pairingRequired"`
	InstanceID       string `json:"instanceId"`
}

type pairResponse struct {
	Token      string `json:"token"`
	InstanceID string `json:"instanceId"`
}

// ResolvedEndpoint is the outcome of resolveRelayEndpoint: a connect URL
// ready to dial, with any pairing token already embedded.
type ResolvedEndpoint struct {
	URL        string
	InstanceID string
}

// httpClient is overridable in tests.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// ResolveEndpoint fetches /config on baseURL, performs the pairing
// handshake if required, and returns a connect URL for path with the same
// host+port and a sanitized token query param, per spec §4.I.
func ResolveEndpoint(ctx context.Context, baseURL string, path Path) (ResolvedEndpoint, error) {
	cfg, err := fetchConfig(ctx, baseURL)
	if err != nil {
		return ResolvedEndpoint{}, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return ResolvedEndpoint{}, gaserr.Wrap(gaserr.KindRelayUnavailable, "relay base URL is unparsable", err)
	}

	connectURL := &url.URL{
		Scheme: "ws",
		Host:   fmt.Sprintf("%s:%d", u.Hostname(), cfg.RelayPort),
		Path:   "/" + string(path),
	}

	if !cfg.PairingRequired {
		return ResolvedEndpoint{URL: connectURL.String(), InstanceID: cfg.InstanceID}, nil
	}

	token, instanceID, err := fetchPairingToken(ctx, baseURL, cfg.InstanceID)
	if err != nil {
		return ResolvedEndpoint{}, err
	}

	q := connectURL.Query()
	q.Set("token", token)
	connectURL.RawQuery = q.Encode()

	return ResolvedEndpoint{URL: connectURL.String(), InstanceID: instanceID}, nil
}

func fetchConfig(ctx context.Context, baseURL string) (configResponse, error) {
	var cfg configResponse
	if err := getJSON(ctx, strings.TrimRight(baseURL, "/")+"/config", &cfg); err != nil {
		return configResponse{}, err
	}
	return cfg, nil
}

// fetchPairingToken gets /pair and verifies the returned instanceId matches
// the one /config reported, per spec §4.I "verify instanceId matches".
func fetchPairingToken(ctx context.Context, baseURL, expectedInstanceID string) (token string, instanceID string, err error) {
	var pr pairResponse
	if err := getJSON(ctx, strings.TrimRight(baseURL, "/")+"/pair", &pr); err != nil {
		return "", "", err
	}
	if pr.Token == "" {
		return "", "", gaserr.New(gaserr.KindRelayPairingTokenMissing, "relay did not return a pairing token")
	}
	if pr.InstanceID != "" && expectedInstanceID != "" && pr.InstanceID != expectedInstanceID {
		return "", "", gaserr.New(gaserr.KindRelayPairingMismatch, "relay instanceId changed between /config and /pair")
	}
	return pr.Token, pr.InstanceID, nil
}

func getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gaserr.Wrap(gaserr.KindRelayUnavailable, "failed building relay request", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if bridge.IsConnectionError(err) {
			return gaserr.Wrap(gaserr.KindRelayUnavailable, "relay is unreachable", err)
		}
		return gaserr.Wrap(gaserr.KindRelayUnavailable, "relay request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return gaserr.New(gaserr.KindRelayUnauthorized, "relay rejected the request as unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		return gaserr.New(gaserr.KindRelayUnavailable, fmt.Sprintf("relay returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gaserr.Wrap(gaserr.KindRelayUnavailable, "failed reading relay response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return gaserr.Wrap(gaserr.KindRelayUnavailable, "relay returned a malformed response", err)
	}
	return nil
}

// SanitizeIncomingToken strips any "token" query param a caller-supplied
// URL carries, per spec §4.I "sanitize any incoming token query param from
// the caller" — callers must not be able to smuggle their own token.
func SanitizeIncomingToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if _, present := q["token"]; !present {
		return raw
	}
	q.Del("token")
	u.RawQuery = q.Encode()
	return u.String()
}
