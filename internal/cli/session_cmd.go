// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - login, logout, status and verify.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/util"
)

// =============================================================================
// SHARED HELPERS
// =============================================================================

// withController connects, runs fn and closes the controller again.
func (a *App) withController(fn func() error) error {
	if err := a.connect(); err != nil {
		return err
	}
	defer a.close()
	return fn()
}

// report prints the alerts raised in scope and, in JSON mode, one response
// carrying data. It returns failure unchanged.
func (a *App) report(command, scope string, data map[string]any, failure error) error {
	list := a.ctrl.AlertsForScope(scope)

	if a.jsonOutput {
		if data == nil {
			data = map[string]any{}
		}
		data["alerts"] = alertsJSON(list)
		resp := NewJSONResponse(command, data)
		if failure != nil {
			resp = NewJSONErrorResponse(command, failure)
			resp.Data = data
		}
		if err := resp.Write(a.Out); err != nil {
			return err
		}
		return failure
	}

	printAlerts(a.Out, list)
	return failure
}

// =============================================================================
// LOGIN
// =============================================================================

func newLoginCmd(a *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The password is read without echo from
the terminal, or from the first line of stdin when it is piped.`,
		Example: `  accountctl login ana@example.com
  echo "$PASSWORD" | accountctl login --email ana@example.com`,
		Args: argsUsage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				email = args[0]
			}
			email = util.CleanInput(email)
			if email == "" {
				return usageErrorf("an email is required")
			}

			password, err := readPassword(a.In, a.Err)
			if err != nil {
				if errors.Is(err, ErrNoPassword) {
					return usageErrorf("a password is required")
				}
				return err
			}

			return a.withController(func() error {
				result, ok := a.ctrl.Login(cmd.Context(), email, password)
				data := map[string]any{"authenticated": ok}
				var failure error
				if ok {
					data["email"] = result.Session.Email
					data["name"] = result.Session.DisplayName()
					if !a.jsonOutput {
						fmt.Fprintf(a.Out, "%s %s\n", SuccessStyle.Render("Signed in as"), result.Session.DisplayName())
					}
				} else {
					failure = newOperationError(account.OpLogin, a.ctrl.Outcome().LastStatusCode)
				}
				return a.report("login", account.OpLogin, data, failure)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

// =============================================================================
// LOGOUT
// =============================================================================

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(func() error {
				a.ctrl.Logout(nil)
				if a.jsonOutput {
					return NewJSONResponse("logout", map[string]any{"authenticated": false}).Write(a.Out)
				}
				fmt.Fprintln(a.Out, "Signed out.")
				return nil
			})
		},
	}
}

// =============================================================================
// STATUS
// =============================================================================

func newStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		Args:  argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(func() error {
				sess, ok := a.ctrl.Session()
				data := map[string]any{
					"authenticated": a.ctrl.IsAuthenticated(),
					"base_url":      a.cfg.API.BaseURL,
					"backend":       a.cfg.Session.Backend,
				}
				if ok {
					data["email"] = sess.Email
					data["name"] = sess.DisplayName()
				}
				if a.jsonOutput {
					return NewJSONResponse("status", data).Write(a.Out)
				}

				fmt.Fprintln(a.Out, TitleStyle.Render("Session"))
				if a.ctrl.IsAuthenticated() && ok {
					printField(a.Out, "Signed in", sess.DisplayName())
					printField(a.Out, "Email", util.MaskEmail(sess.Email))
				} else {
					printField(a.Out, "Signed in", "no")
				}
				printField(a.Out, "Service", a.cfg.API.BaseURL)
				printField(a.Out, "Store", a.cfg.Session.Backend)
				return nil
			})
		},
	}
}

// =============================================================================
// VERIFY
// =============================================================================

func newVerifyCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored token with the server",
		Long: `Check the stored token with the server. Any failure ends the stored
session, so a later status shows signed out.`,
		Args: argsUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(func() error {
				ok := a.ctrl.VerifyToken(cmd.Context())
				var failure error
				if !ok {
					failure = &OperationError{Operation: account.OpVerifyToken, Code: ExitAuthError}
				}
				if a.jsonOutput {
					data := map[string]any{"authenticated": ok}
					if failure != nil {
						resp := NewJSONErrorResponse("verify", failure)
						resp.Data = data
						if err := resp.Write(a.Out); err != nil {
							return err
						}
						return failure
					}
					return NewJSONResponse("verify", data).Write(a.Out)
				}

				if ok {
					fmt.Fprintln(a.Out, SuccessStyle.Render("Session is valid."))
				} else {
					fmt.Fprintln(a.Out, ErrorStyle.Render("Session is not valid; signed out."))
				}
				return failure
			})
		},
	}
}
