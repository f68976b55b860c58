// main.go — gasoline-cmd entry point: a spf13/cobra command tree over
// internal/session.Manager (spec §6 global flags, §4.H operations).
//
// The browser driver itself is named in spec §1 as an out-of-scope
// external collaborator ("opaque capability ... specified only by
// interface where consumed"); this binary wires internal/session.Manager
// against that interface and leaves the concrete driver to whatever
// build integrates one. See unwiredDriver below.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/session"
	"github.com/gasoline-dev/gasoline-broker/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// cliState carries the flag-derived, lazily-resolved dependencies every
// subcommand needs; cobra's RunE closures capture a pointer to this.
type cliState struct {
	format     string
	configPath string
	logLevel   string

	cfg     config.Config
	log     *telemetry.Logger
	manager *session.Manager
}

func (s *cliState) init(flags *config.FlagOverrides) error {
	cfg, err := config.Load(s.configPath, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.cfg = cfg
	s.log = telemetry.New(s.logLevel)
	s.manager = session.NewManager(cfg, s.log, func() driver.Driver { return unwiredDriver{} })
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	state := &cliState{}
	root := newRootCmd(state)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(state *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:           "gasoline-cmd",
		Short:         "CLI interface for the gasoline session-and-target scheduler",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&state.format, "format", "human", "output format: human|json|csv")
	root.PersistentFlags().StringVar(&state.configPath, "config", "", "path to config.jsonc (default: runtime state root)")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(
		newLaunchCmd(state),
		newConnectCmd(state),
		newConnectRelayCmd(state),
		newDisconnectCmd(state),
		newCloseAllCmd(state),
		newTargetCmd(state),
		newGotoCmd(state),
		newWaitForLoadCmd(state),
		newWaitForRefCmd(state),
		newSnapshotCmd(state),
		newInteractionCmds(state)...,
	)
	root.AddCommand(
		newDomGetCmds(state)...,
	)
	root.AddCommand(
		newClonePageCmd(state),
		newCloneComponentCmd(state),
		newDebugTraceCmd(state),
		newCookieImportCmd(state),
		newCookieListCmd(state),
		newMetricsCmd(state),
	)

	return root
}

// unwiredDriver satisfies driver.Driver so the binary links, and reports
// KindDirectUnavailable on every call: no concrete browser driver is
// wired into this build (spec §1 treats it as an external collaborator).
// Its methods live in driver_unwired.go.
type unwiredDriver struct{}
