// config.go — Nested configuration struct and JSONC decoding (spec §6).
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tailscale/hujson"

	"github.com/gasoline-dev/gasoline-broker/internal/state"
)

// Config is the fully-resolved configuration document, mirroring every
// nested section spec §6 names verbatim.
type Config struct {
	Profile        string   `json:"profile"`
	Headless       bool     `json:"headless"`
	PersistProfile bool     `json:"persistProfile"`
	ChromePath     string   `json:"chromePath"`
	Flags          []string `json:"flags"`

	Snapshot SnapshotConfig `json:"snapshot"`
	Security SecurityConfig `json:"security"`
	Devtools DevtoolsConfig `json:"devtools"`
	Export   ExportConfig   `json:"export"`

	Fingerprint FingerprintConfig `json:"fingerprint"`
	Canary      CanaryTargetsConfig `json:"canary"`

	RelayPort  int       `json:"relayPort"`
	RelayToken TokenOrOff `json:"relayToken"`
	DaemonPort int       `json:"daemonPort"`
	DaemonToken string   `json:"daemonToken"`

	BlockerDetectionThreshold  int                 `json:"blockerDetectionThreshold"`
	BlockerResolutionTimeoutMs int                 `json:"blockerResolutionTimeoutMs"`
	BlockerArtifactCaps        BlockerArtifactCaps `json:"blockerArtifactCaps"`

	Parallelism ParallelismConfig `json:"parallelism"`
}

type SnapshotConfig struct {
	MaxChars int `json:"maxChars"`
	MaxNodes int `json:"maxNodes"`
}

type PromptInjectionGuardConfig struct {
	Enabled bool `json:"enabled"`
}

type SecurityConfig struct {
	AllowRawCDP          bool                       `json:"allowRawCDP"`
	AllowNonLocalCdp     bool                       `json:"allowNonLocalCdp"`
	AllowUnsafeExport    bool                       `json:"allowUnsafeExport"`
	PromptInjectionGuard PromptInjectionGuardConfig `json:"promptInjectionGuard"`
}

type DevtoolsConfig struct {
	ShowFullConsole bool `json:"showFullConsole"`
	ShowFullUrls    bool `json:"showFullUrls"`
}

type ExportConfig struct {
	MaxNodes     int  `json:"maxNodes"`
	InlineStyles bool `json:"inlineStyles"`
}

type FingerprintConfig struct {
	Tier1 Tier1Config `json:"tier1"`
	Tier2 Tier2Config `json:"tier2"`
	Tier3 Tier3Config `json:"tier3"`
}

type Tier1Config struct {
	Enabled              bool     `json:"enabled"`
	WarnOnly             bool     `json:"warnOnly"`
	Locale               string   `json:"locale"`
	Timezone             string   `json:"timezone"`
	Languages            []string `json:"languages"`
	RequireProxy         bool     `json:"requireProxy"`
	GeolocationRequired  bool     `json:"geolocationRequired"`
	Geolocation          *GeoPoint `json:"geolocation,omitempty"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Tier2Config struct {
	Enabled                 bool     `json:"enabled"`
	Mode                    string   `json:"mode"` // "deterministic" | "adaptive"
	ContinuousSignals       bool     `json:"continuousSignals"`
	RotationIntervalMs      int      `json:"rotationIntervalMs"`
	ChallengePatterns       []string `json:"challengePatterns"`
	MaxChallengeEvents      int      `json:"maxChallengeEvents"`
	ScorePenalty            int      `json:"scorePenalty"`
	ScoreRecovery           int      `json:"scoreRecovery"`
	RotationHealthThreshold int      `json:"rotationHealthThreshold"`
}

type Tier3Config struct {
	Enabled           bool         `json:"enabled"`
	ContinuousSignals bool         `json:"continuousSignals"`
	FallbackTier      string       `json:"fallbackTier"` // "tier1" | "tier2"
	Canary            CanaryConfig `json:"canary"`
}

type CanaryConfig struct {
	WindowSize        int `json:"windowSize"`
	MinSamples        int `json:"minSamples"`
	PromoteThreshold  int `json:"promoteThreshold"`
	RollbackThreshold int `json:"rollbackThreshold"`
}

type CanaryTargetsConfig struct {
	Targets struct {
		Enabled bool `json:"enabled"`
	} `json:"targets"`
}

type BlockerArtifactCaps struct {
	MaxNetworkEvents int `json:"maxNetworkEvents"`
	MaxHosts         int `json:"maxHosts"`
}

type ModeCaps struct {
	ManagedHeaded           int `json:"managedHeaded"`
	ManagedHeadless         int `json:"managedHeadless"`
	CdpConnectHeaded        int `json:"cdpConnectHeaded"`
	CdpConnectHeadless      int `json:"cdpConnectHeadless"`
	ExtensionOpsHeaded      int `json:"extensionOpsHeaded"`
	ExtensionLegacyCdpHeaded int `json:"extensionLegacyCdpHeaded"`
}

type ParallelismConfig struct {
	Floor                   int      `json:"floor"`
	BackpressureTimeoutMs   int      `json:"backpressureTimeoutMs"`
	SampleIntervalMs        int      `json:"sampleIntervalMs"`
	RecoveryStableWindows   int      `json:"recoveryStableWindows"`
	HostFreeMemMediumPct    float64  `json:"hostFreeMemMediumPct"`
	HostFreeMemHighPct      float64  `json:"hostFreeMemHighPct"`
	HostFreeMemCriticalPct  float64  `json:"hostFreeMemCriticalPct"`
	RssBudgetMb             int      `json:"rssBudgetMb"`
	RssSoftPct              float64  `json:"rssSoftPct"`
	RssHighPct              float64  `json:"rssHighPct"`
	RssCriticalPct          float64  `json:"rssCriticalPct"`
	QueueAgeHighMs          int      `json:"queueAgeHighMs"`
	QueueAgeCriticalMs      int      `json:"queueAgeCriticalMs"`
	ModeCaps                ModeCaps `json:"modeCaps"`
}

// TokenOrOff models relayToken's documented shape: a hex string, or the
// literal boolean false meaning "disabled".
type TokenOrOff struct {
	Token    string
	Disabled bool
}

func (t TokenOrOff) MarshalJSON() ([]byte, error) {
	if t.Disabled {
		return []byte("false"), nil
	}
	return json.Marshal(t.Token)
}

func (t *TokenOrOff) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		t.Disabled = !b && string(data) == "false"
		if t.Disabled {
			t.Token = ""
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("relayToken must be a string or false: %w", err)
	}
	t.Token = s
	t.Disabled = false
	return nil
}

// Defaults returns the baseline configuration applied before any file,
// environment, or flag overrides.
func Defaults() Config {
	return Config{
		Profile:        "",
		Headless:       true,
		PersistProfile: true,
		Snapshot:       SnapshotConfig{MaxChars: 40000, MaxNodes: 5000},
		Security: SecurityConfig{
			AllowRawCDP:       false,
			AllowNonLocalCdp:  false,
			AllowUnsafeExport: false,
		},
		Export: ExportConfig{MaxNodes: 2000, InlineStyles: false},
		Fingerprint: FingerprintConfig{
			Tier1: Tier1Config{Enabled: true, WarnOnly: true},
			Tier2: Tier2Config{
				Enabled:                 false,
				Mode:                    "deterministic",
				RotationIntervalMs:      30 * 60 * 1000,
				MaxChallengeEvents:      50,
				ScorePenalty:            15,
				ScoreRecovery:           2,
				RotationHealthThreshold: 40,
			},
			Tier3: Tier3Config{
				Enabled:      false,
				FallbackTier: "tier1",
				Canary: CanaryConfig{
					WindowSize:        20,
					MinSamples:        5,
					PromoteThreshold:  80,
					RollbackThreshold: 40,
				},
			},
		},
		RelayPort:                  7891,
		DaemonPort:                 7890,
		BlockerDetectionThreshold:  1,
		BlockerResolutionTimeoutMs: 2 * 60 * 1000,
		BlockerArtifactCaps:        BlockerArtifactCaps{MaxNetworkEvents: 50, MaxHosts: 20},
		Parallelism: ParallelismConfig{
			Floor:                  1,
			BackpressureTimeoutMs:  15000,
			SampleIntervalMs:       1000,
			RecoveryStableWindows: 3,
			HostFreeMemMediumPct:  25,
			HostFreeMemHighPct:    15,
			HostFreeMemCriticalPct: 7,
			RssBudgetMb:           4096,
			RssSoftPct:            70,
			RssHighPct:            85,
			RssCriticalPct:        95,
			QueueAgeHighMs:        5000,
			QueueAgeCriticalMs:    15000,
			ModeCaps: ModeCaps{
				ManagedHeaded:            4,
				ManagedHeadless:          8,
				CdpConnectHeaded:         4,
				CdpConnectHeadless:       6,
				ExtensionOpsHeaded:       2,
				ExtensionLegacyCdpHeaded: 1,
			},
		},
	}
}

// FlagOverrides holds values explicitly supplied on the command line. A nil
// pointer field means "not set"; see spec §6's global flag list.
type FlagOverrides struct {
	Profile          *string
	Headless         *bool
	PersistProfile   *bool
	ChromePath       *string
	Flags            []string
	Lang             *string
	Timezone         *string
	ProxyServer      *string
	AllowNonLocalCdp *bool
	AllowUnsafeExport *bool
}

// Load resolves the configuration cascade: defaults < config file < env
// vars < CLI flags (spec §6). configPath may be empty, in which case the
// default path under the runtime state root is used; a missing file is not
// an error — defaults apply.
func Load(configPath string, flags *FlagOverrides) (Config, error) {
	cfg := Defaults()

	path := configPath
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	if err := mergeFile(&cfg, path); err != nil {
		return cfg, err
	}

	mergeEnv(&cfg)

	if flags != nil {
		mergeFlags(&cfg, flags)
	}

	return cfg, nil
}

// DefaultPath returns the config file path under the runtime state root,
// generating and persisting first-run tokens if the file does not exist
// yet (spec §6: "chose a 32-byte hex relay/daemon token on first run and
// persist the config with 0700 dir / 0600 file mode").
func DefaultPath() (string, error) {
	root, err := state.RootDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, "config.jsonc")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}
	if err := bootstrap(path); err != nil {
		return "", err
	}
	return path, nil
}

func bootstrap(path string) error {
	cfg := Defaults()
	token, err := randomHexToken(32)
	if err != nil {
		return err
	}
	cfg.RelayToken = TokenOrOff{Token: token}
	daemonToken, err := randomHexToken(32)
	if err != nil {
		return err
	}
	cfg.DaemonToken = daemonToken

	dir := filepath.Dir(path)
	// #nosec G301 -- first-run state dir intentionally mode 0700 per spec §6
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// #nosec G306 -- config carries tokens, intentionally 0600 per spec §6
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func randomHexToken(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// mergeFile decodes a JSONC document (comments, trailing commas) at path
// and merges present fields into cfg. A missing file is not an error:
// encoding/json's Unmarshal only overwrites fields explicitly present in
// the document, so cfg (already holding Defaults()) is a correct merge
// target without a separate pointer-typed shadow struct.
func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is the resolved state-root config file
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := json.Unmarshal(std, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GASOLINE_RELAY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RelayPort = n
		}
	}
	if v := os.Getenv("GASOLINE_DAEMON_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DaemonPort = n
		}
	}
	if v := os.Getenv("GASOLINE_ALLOW_NON_LOCAL_CDP"); v == "1" {
		cfg.Security.AllowNonLocalCdp = true
	}
}

func mergeFlags(cfg *Config, f *FlagOverrides) {
	if f.Profile != nil {
		cfg.Profile = *f.Profile
	}
	if f.Headless != nil {
		cfg.Headless = *f.Headless
	}
	if f.PersistProfile != nil {
		cfg.PersistProfile = *f.PersistProfile
	}
	if f.ChromePath != nil {
		cfg.ChromePath = *f.ChromePath
	}
	if len(f.Flags) > 0 {
		cfg.Flags = append(append([]string{}, cfg.Flags...), f.Flags...)
	}
	if f.Lang != nil {
		cfg.Fingerprint.Tier1.Languages = []string{*f.Lang}
	}
	if f.Timezone != nil {
		cfg.Fingerprint.Tier1.Timezone = *f.Timezone
	}
	if f.AllowNonLocalCdp != nil {
		cfg.Security.AllowNonLocalCdp = *f.AllowNonLocalCdp
	}
	if f.AllowUnsafeExport != nil {
		cfg.Security.AllowUnsafeExport = *f.AllowUnsafeExport
	}
}
