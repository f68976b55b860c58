// cmd_target.go — target management subcommands wrapping component A
// (spec §4.H newTarget/listPages/closePage/useTarget/listTargets/
// closeTarget/setName/removeName).
package main

import (
	"github.com/spf13/cobra"
)

func newTargetCmd(state *cliState) *cobra.Command {
	target := &cobra.Command{
		Use:   "target",
		Short: "Target (tab) management",
	}

	var sessionID string
	target.PersistentFlags().StringVar(&sessionID, "session", "", "session id (required)")
	target.MarkPersistentFlagRequired("session")

	target.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Open a fresh tab",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := state.init(nil); err != nil {
					return err
				}
				res, err := state.manager.NewTarget(cmd.Context(), sessionID)
				return emit(state, "target", "new", res, err)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every registered target",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := state.init(nil); err != nil {
					return err
				}
				res, err := state.manager.ListPages(cmd.Context(), sessionID, true)
				return emit(state, "target", "list", res, err)
			},
		},
		&cobra.Command{
			Use:   "list-names",
			Short: "List human-named targets",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := state.init(nil); err != nil {
					return err
				}
				res, err := state.manager.ListTargets(sessionID)
				return emit(state, "target", "list-names", res, err)
			},
		},
		newTargetIDFlagCmd(state, &sessionID, "close", "Close a target", func(s *cliState, sid, tid string, cmd *cobra.Command) (any, error) {
			return s.manager.CloseTarget(cmd.Context(), sid, tid)
		}),
		newTargetIDFlagCmd(state, &sessionID, "use", "Make a target the active one", func(s *cliState, sid, tid string, cmd *cobra.Command) (any, error) {
			return s.manager.UseTarget(sid, tid)
		}),
		newTargetNameCmd(state, &sessionID),
		newTargetUnnameCmd(state, &sessionID),
	)
	return target
}

// targetAction is the shape of a one-target-id operation on Manager.
type targetAction func(s *cliState, sessionID, targetID string, cmd *cobra.Command) (any, error)

func newTargetIDFlagCmd(state *cliState, sessionID *string, use, short string, action targetAction) *cobra.Command {
	var targetID string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			v, err := action(state, *sessionID, targetID, cmd)
			res, _ := v.(interface{ asResult() })
			_ = res
			return emitAny(state, "target", use, v, err)
		},
	}
	cmd.Flags().StringVar(&targetID, "target", "", "target id (required)")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newTargetNameCmd(state *cliState, sessionID *string) *cobra.Command {
	var targetID, name string
	cmd := &cobra.Command{
		Use:   "set-name",
		Short: "Assign a human name to a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			res, err := state.manager.SetTargetName(*sessionID, targetID, name)
			return emit(state, "target", "set-name", res, err)
		},
	}
	cmd.Flags().StringVar(&targetID, "target", "", "target id (required)")
	cmd.Flags().StringVar(&name, "name", "", "human name (required)")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newTargetUnnameCmd(state *cliState, sessionID *string) *cobra.Command {
	var targetID string
	cmd := &cobra.Command{
		Use:   "remove-name",
		Short: "Remove a target's human name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.init(nil); err != nil {
				return err
			}
			res, err := state.manager.RemoveTargetName(*sessionID, targetID)
			return emit(state, "target", "remove-name", res, err)
		},
	}
	cmd.Flags().StringVar(&targetID, "target", "", "target id (required)")
	cmd.MarkFlagRequired("target")
	return cmd
}
