// cmd_session.go — launch/connect/connect-relay/disconnect/close-all
// (spec §4.H session lifecycle).
package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/session"
)

func newLaunchCmd(state *cliState) *cobra.Command {
	var profile string
	var headless bool
	var persistProfile bool
	var chromePath string
	var extraFlags string
	var lang, timezone, proxy string

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start a new managed-mode session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(&config.FlagOverrides{
				Profile:        &profile,
				Headless:       &headless,
				PersistProfile: &persistProfile,
				ChromePath:     &chromePath,
				Lang:           &lang,
				Timezone:       &timezone,
			}); err != nil {
				return err
			}
			var flags []string
			if extraFlags != "" {
				flags = strings.Split(extraFlags, ",")
			}
			res, err := state.manager.Launch(cmd.Context(), session.LaunchOpts{
				Profile:        profile,
				Headless:       headless,
				PersistProfile: persistProfile,
				ChromePath:     chromePath,
				ExtraFlags:     flags,
				Lang:           lang,
				Timezone:       timezone,
				ProxyServer:    proxy,
			})
			return emit(state, "session", "launch", res, err)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "named persistent profile")
	cmd.Flags().BoolVar(&headless, "headless", true, "run headless")
	cmd.Flags().BoolVar(&persistProfile, "persist-profile", true, "keep the profile directory across sessions")
	cmd.Flags().StringVar(&chromePath, "chrome-path", "", "override the browser binary path")
	cmd.Flags().StringVar(&extraFlags, "flags", "", "comma-separated extra browser flags")
	cmd.Flags().StringVar(&lang, "lang", "", "preferred language")
	cmd.Flags().StringVar(&timezone, "timezone", "", "preferred timezone")
	cmd.Flags().StringVar(&proxy, "proxy-server", "", "proxy server URL")
	return cmd
}

func newConnectCmd(state *cliState) *cobra.Command {
	var wsEndpoint string
	var allowNonLocal bool

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Attach to an existing browser over CDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(&config.FlagOverrides{AllowNonLocalCdp: &allowNonLocal}); err != nil {
				return err
			}
			res, err := state.manager.Connect(cmd.Context(), session.ConnectOpts{
				WsEndpoint:       wsEndpoint,
				AllowNonLocalCdp: allowNonLocal,
			})
			return emit(state, "session", "connect", res, err)
		},
	}
	cmd.Flags().StringVar(&wsEndpoint, "ws-endpoint", "", "CDP websocket endpoint (required)")
	cmd.Flags().BoolVar(&allowNonLocal, "allow-non-local-cdp", false, "permit a non-localhost endpoint")
	cmd.MarkFlagRequired("ws-endpoint")
	return cmd
}

func newConnectRelayCmd(state *cliState) *cobra.Command {
	var baseURL string
	var extensionLegacy bool

	cmd := &cobra.Command{
		Use:   "connect-relay",
		Short: "Bootstrap an extension-relay-mode session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			res, err := state.manager.ConnectRelay(cmd.Context(), session.RelayOpts{
				BaseURL:         baseURL,
				ExtensionLegacy: extensionLegacy,
			})
			return emit(state, "session", "connect-relay", res, err)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "ops-relay base URL (required)")
	cmd.Flags().BoolVar(&extensionLegacy, "extension-legacy", false, "use the legacy /cdp path instead of /ops")
	cmd.MarkFlagRequired("base-url")
	return cmd
}

func newDisconnectCmd(state *cliState) *cobra.Command {
	var sessionID string
	var closeBrowser bool

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Tear down a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			err := state.manager.Disconnect(cmd.Context(), sessionID, closeBrowser)
			return emit(state, "session", "disconnect", session.Result{}, err)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (required)")
	cmd.Flags().BoolVar(&closeBrowser, "close-browser", false, "also close the browser/context")
	cmd.MarkFlagRequired("session")
	return cmd
}

func newCloseAllCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "close-all",
		Short: "Disconnect every live session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			state.manager.CloseAll(cmd.Context())
			return emit(state, "session", "close-all", session.Result{}, nil)
		},
	}
}
