// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// recover_cmd.go - Account recovery workflows and unlock.

package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/util"
)

// identityFlags binds the account lookup fields to a command.
type identityFlags struct {
	email     string
	ci        string
	birthdate string
}

func (f *identityFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.email, "email", "e", "", "account email")
	fs.StringVar(&f.ci, "ci", "", "national identity number")
	fs.StringVar(&f.birthdate, "birthdate", "", "birth date, e.g. 1990-05-17")
}

// identity normalises the flags and rejects missing fields.
func (f *identityFlags) identity() (account.Identity, error) {
	id := account.Identity{
		Email:     util.CleanInput(f.email),
		CI:        util.CleanInput(f.ci),
		Birthdate: util.CleanInput(f.birthdate),
	}
	switch {
	case id.Email == "":
		return id, usageErrorf("--email is required")
	case id.CI == "":
		return id, usageErrorf("--ci is required")
	case id.Birthdate == "":
		return id, usageErrorf("--birthdate is required")
	}
	return id, nil
}

// outcome reports op's result: ok, or the OperationError for the recorded status.
func (a *App) outcome(op string, ok bool) error {
	if ok {
		return nil
	}
	return newOperationError(op, a.ctrl.Outcome().LastStatusCode)
}

// =============================================================================
// RECOVER
// =============================================================================

func newRecoverCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover access to an account",
		Long: `Recover a forgotten password in three steps:

  1. accountctl recover verify     confirm the account exists and is not locked
  2. accountctl recover send-code  send a recovery code to the account email
  3. accountctl recover restore    set a new password using the code`,
	}
	cmd.AddCommand(newRecoverVerifyCmd(a), newRecoverSendCodeCmd(a), newRecoverRestoreCmd(a))
	return cmd
}

func newRecoverVerifyCmd(a *App) *cobra.Command {
	var flags identityFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm an account identity",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := flags.identity()
			if err != nil {
				return err
			}
			return a.withController(func() error {
				ok := a.ctrl.VerifyAccount(cmd.Context(), id)
				return a.report("recover verify", account.OpVerifyAccount,
					map[string]any{"verified": ok}, a.outcome(account.OpVerifyAccount, ok))
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newRecoverSendCodeCmd(a *App) *cobra.Command {
	var flags identityFlags
	cmd := &cobra.Command{
		Use:   "send-code",
		Short: "Send a recovery code to the account email",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := flags.identity()
			if err != nil {
				return err
			}
			return a.withController(func() error {
				ok := a.ctrl.SendCode(cmd.Context(), id)
				wait := a.ctrl.Cooldown().SecondsRemaining
				if ok && !a.jsonOutput && wait > 0 {
					fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("You can request another code in %ds.", wait)))
				}
				return a.report("recover send-code", account.OpSendCode,
					map[string]any{"sent": ok, "resend_in_seconds": wait}, a.outcome(account.OpSendCode, ok))
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newRecoverRestoreCmd(a *App) *cobra.Command {
	var (
		flags identityFlags
		code  string
	)
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Set a new password using a recovery code",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := flags.identity()
			if err != nil {
				return err
			}
			code = util.CleanInput(code)
			if code == "" {
				return usageErrorf("--code is required")
			}
			return a.withController(func() error {
				ok := a.ctrl.RestorePassword(cmd.Context(), id, code)
				return a.report("recover restore", account.OpRestorePassword,
					map[string]any{"restored": ok}, a.outcome(account.OpRestorePassword, ok))
			})
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&code, "code", "", "recovery code from the email")
	return cmd
}

// =============================================================================
// UNLOCK
// =============================================================================

func newUnlockCmd(a *App) *cobra.Command {
	var flags identityFlags
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Unlock a locked account",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := flags.identity()
			if err != nil {
				return err
			}
			return a.withController(func() error {
				a.ctrl.UnlockAccount(cmd.Context(), id)
				// Unlock reports only through alerts; the recorded status tells
				// the exit code.
				ok := a.ctrl.Outcome().LastStatusCode == http.StatusOK
				return a.report("unlock", account.OpUnlockAccount,
					map[string]any{"unlocked": ok}, a.outcome(account.OpUnlockAccount, ok))
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
