// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - config show, get, set and keys.

package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/accountctl/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Show or change configuration. Keys use the file's dotted names, e.g.
cooldown.seconds or api.base_url. Run "accountctl config keys" for the list.`,
	}
	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigKeysCmd(a),
	)
	return cmd
}

func newConfigShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput {
				return NewJSONResponse("config show", map[string]any{"path": a.cfgFile, "config": a.cfg}).Write(a.Out)
			}
			source := a.cfgFile
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintln(a.Out, DimStyle.Render("# "+source))
			if err := toml.NewEncoder(a.Out).Encode(a.cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return nil
		},
	}
}

func newConfigGetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  argsUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.cfg.Get(args[0])
			if err != nil {
				return usageErrorf("%v", err)
			}
			if a.jsonOutput {
				return NewJSONResponse("config get", map[string]any{"key": args[0], "value": value}).Write(a.Out)
			}
			fmt.Fprintln(a.Out, value)
			return nil
		},
	}
}

func newConfigSetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value and save the config file",
		Long: `Change one value and save the config file. The file that was loaded is
rewritten; with no file, ~/.accountctl/config.toml is created. Flag overrides
such as --base-url are not saved.`,
		Example: `  accountctl config set cooldown.seconds 30
  accountctl config set api.base_url https://accounts.example.com/api/v1/`,
		Args: argsUsage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			target := a.cfgFile
			fileCfg := config.Default()
			if target != "" {
				loaded, err := config.LoadFromPath(target)
				if err != nil {
					return &ConfigError{Action: "load", Err: err}
				}
				fileCfg = loaded
			} else {
				path, err := config.DefaultPath()
				if err != nil {
					return &ConfigError{Action: "save", Err: err}
				}
				target = path
			}

			if err := fileCfg.Set(key, value); err != nil {
				return usageErrorf("%v", err)
			}
			if err := fileCfg.Validate(); err != nil {
				return &ConfigError{Action: "validate", Err: err}
			}
			if err := config.SaveToPath(fileCfg, target); err != nil {
				return &ConfigError{Action: "save", Err: err}
			}
			a.logger.Debug("config saved", "path", target, "key", key)

			if a.jsonOutput {
				return NewJSONResponse("config set", map[string]any{"key": key, "value": value, "path": target}).Write(a.Out)
			}
			fmt.Fprintf(a.Out, "%s %s = %s (%s)\n", SuccessStyle.Render("Saved"), key, value, target)
			return nil
		},
	}
}

func newConfigKeysCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.Keys()
			if a.jsonOutput {
				return NewJSONResponse("config keys", map[string]any{"keys": keys}).Write(a.Out)
			}
			fmt.Fprintln(a.Out, strings.Join(keys, "\n"))
			return nil
		},
	}
}
