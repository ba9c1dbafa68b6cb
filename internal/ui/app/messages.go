// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/accountctl/internal/account"
)

// TickInterval is how often the view re-reads controller state.
const TickInterval = 100 * time.Millisecond

type tickMsg time.Time

// VerifyDoneMsg reports a token verification.
type VerifyDoneMsg struct{ OK bool }

// LoginDoneMsg reports a sign-in attempt.
type LoginDoneMsg struct {
	OK     bool
	Result *account.LoginResult
}

// VerifyAccountDoneMsg reports an identity check on the recovery screen.
type VerifyAccountDoneMsg struct {
	OK       bool
	Identity account.Identity
}

// SendCodeDoneMsg reports a recovery code request.
type SendCodeDoneMsg struct{ OK bool }

// RestoreDoneMsg reports a password restore.
type RestoreDoneMsg struct{ OK bool }

// UnlockDoneMsg reports an unlock request. Its outcome is in the alerts.
type UnlockDoneMsg struct{}

// TimingsChangedMsg carries timings from a reloaded config file.
type TimingsChangedMsg struct{ Timings account.Timings }
