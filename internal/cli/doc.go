// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the accountctl command tree.

Running accountctl with no subcommand starts the interactive TUI. The
subcommands run one account operation each and print the alerts it raised:

	accountctl login [email]          Sign in (password from the terminal or stdin)
	accountctl logout                 End the stored session
	accountctl status                 Show the stored session
	accountctl verify                 Check the stored token with the server
	accountctl recover verify         Confirm an identity before recovery
	accountctl recover send-code      Send a recovery code
	accountctl recover restore        Set a new password with a recovery code
	accountctl unlock                 Unlock a locked account
	accountctl config show|get|set|keys
	accountctl version

# Global Flags

	--config       Config file (toml, json or yaml)
	--base-url     Override api.base_url
	--log-level    Override log.level
	--metrics-addr Serve Prometheus metrics while the TUI runs
	--json         Print one JSON response per command

# Exit Codes

Failed operations map to exit codes through the status interpretation table:
401 and 403 exit with ExitAuthError, 404 with ExitNotFoundError, and no
structured response with ExitNetworkError. See errors.go.
*/
package cli
