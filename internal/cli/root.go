// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Execute runs accountctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := NewApp(in, out, errOut)
	root := NewRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		w := errOut
		if a.jsonOutput {
			// JSON consumers read stdout.
			w = out
		}
		DisplayError(w, commandName(cmd), err, a.jsonOutput)
	}
	return ExitCodeFor(err)
}

// commandName returns the path below the root, e.g. "recover restore".
func commandName(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	path := cmd.CommandPath()
	if i := strings.IndexByte(path, ' '); i >= 0 {
		return path[i+1:]
	}
	return path
}

// NewRootCmd builds the command tree bound to a.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "accountctl",
		Short: "Terminal client for the account service",
		Long: `accountctl signs in to the account service and runs the account
recovery workflows. With no subcommand it starts the interactive TUI.`,
		Args:          argsUsage(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureColors(a.Out)
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.accountctl/config.toml)")
	flags.StringVar(&a.baseURL, "base-url", "", "account API base URL")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the TUI runs")
	flags.BoolVar(&a.jsonOutput, "json", false, "print JSON responses")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newVerifyCmd(a),
		newRecoverCmd(a),
		newUnlockCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

// argsUsage wraps a cobra positional-args check so failures exit as usage errors.
func argsUsage(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &UsageError{Reason: err.Error()}
		}
		return nil
	}
}

func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  argsUsage(cobra.NoArgs),
		// Needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{"version": Version, "commit": GitCommit, "build_date": BuildDate}
			if a.jsonOutput {
				return NewJSONResponse("version", info).Write(a.Out)
			}
			fmt.Fprintf(a.Out, "accountctl %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
