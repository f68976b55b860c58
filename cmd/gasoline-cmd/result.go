// result.go — converts a session.Result/error pair into output.Result and
// writes it via the configured formatter (spec §6 --format).
package main

import (
	"os"

	"github.com/gasoline-dev/gasoline-broker/cmd/gasoline-cmd/output"
	"github.com/gasoline-dev/gasoline-broker/internal/session"
)

func emit(state *cliState, tool, action string, res session.Result, err error) error {
	out := &output.Result{Tool: tool, Action: action}
	if err != nil {
		out.Success = false
		out.Error = err.Error()
	} else {
		out.Success = true
		if m, ok := res.Value.(map[string]any); ok {
			out.Data = m
		} else if res.Value != nil {
			out.Data = map[string]any{"value": res.Value}
		}
		if res.Blocker != nil {
			if out.Data == nil {
				out.Data = map[string]any{}
			}
			out.Data["blocker"] = res.Blocker.Blocker
			out.Data["blockerState"] = string(res.Blocker.State)
		}
	}

	formatter := output.GetFormatter(state.format)
	if werr := formatter.Format(os.Stdout, out); werr != nil {
		return werr
	}
	if err != nil {
		return exitErr{}
	}
	return nil
}

// exitErr wraps a command failure so cobra returns a non-zero exit code
// without cobra re-printing the error (we've already written it via the
// formatter above); see root.SilenceErrors in main.go's command tree.
type exitErr struct{}

func (exitErr) Error() string { return "command failed" }
