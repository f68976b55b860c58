// Package state centralizes filesystem locations for the scheduler's
// runtime artifacts: logs, PID files, and per-session managed-mode browser
// profile directories (spec §6 "Persisted state").
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// StateDirEnv overrides the default runtime state root.
	StateDirEnv = "GASOLINE_STATE_DIR"

	xdgStateHomeEnv = "XDG_STATE_HOME"
	appName         = "gasoline"
)

// RootDir returns the runtime state root.
// Resolution order:
//  1. GASOLINE_STATE_DIR (if set)
//  2. XDG_STATE_HOME/gasoline (if XDG_STATE_HOME is set)
//  3. os.UserConfigDir()/gasoline (cross-platform fallback)
func RootDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(StateDirEnv)); override != "" {
		return normalizePath(override)
	}

	if xdg := strings.TrimSpace(os.Getenv(xdgStateHomeEnv)); xdg != "" {
		root, err := normalizePath(xdg)
		if err != nil {
			return "", err
		}
		return filepath.Join(root, appName), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	root, err := normalizePath(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}

// LogsDir returns the logs directory under RootDir.
func LogsDir() (string, error) {
	return InRoot("logs")
}

// DefaultLogFile returns the default structured log file path.
func DefaultLogFile() (string, error) {
	return InRoot("logs", "gasoline.jsonl")
}

// CrashLogFile returns the panic crash log file path.
func CrashLogFile() (string, error) {
	return InRoot("logs", "crash.log")
}

// PIDFile returns the PID file path for the given daemon port.
func PIDFile(port int) (string, error) {
	return InRoot("run", "gasoline-"+strconv.Itoa(port)+".pid")
}

// ProfilesDir returns the directory under which named (persistent) managed
// profile directories live.
func ProfilesDir() (string, error) {
	return InRoot("profiles")
}

// NamedProfileDir returns the profile directory for a caller-supplied
// --profile name (spec §4.H launch: "resolve profile dir (persistent or
// ephemeral under temp)"). The name is sanitized to a single path element
// so it cannot escape ProfilesDir.
func NamedProfileDir(name string) (string, error) {
	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == string(filepath.Separator) {
		return "", errors.New("invalid profile name")
	}
	return InRoot("profiles", clean)
}

// EphemeralProfileDir creates and returns a fresh temp directory for a
// non-persistent session, scoped by sessionID so concurrent sessions never
// collide.
func EphemeralProfileDir(sessionID string) (string, error) {
	return os.MkdirTemp("", "gasoline-profile-"+sessionID+"-")
}

// AuditTrailFile returns the cookie-import audit trail file path.
func AuditTrailFile() (string, error) {
	return InRoot("audit", "cookie-import.jsonl")
}

// InRoot returns a path rooted under RootDir with additional path elements.
func InRoot(parts ...string) (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	all := make([]string, 0, len(parts)+1)
	all = append(all, root)
	all = append(all, parts...)
	return filepath.Join(all...), nil
}

func normalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	return filepath.Clean(absPath), nil
}
