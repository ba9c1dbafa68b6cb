// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package account

import (
	"net/http"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/tracker"
)

// Operation names double as alert scopes.
const (
	OpLogin           = "login"
	OpVerifyToken     = "verifyToken"
	OpVerifyAccount   = "verifyAccount"
	OpSendCode        = "sendCode"
	OpRestorePassword = "restorePassword"
	OpUnlockAccount   = "unlockAccount"
)

// Endpoint paths, relative to the API base URL.
const (
	pathLogin           = "auth/login"
	pathValidateToken   = "auth/account/validate-token"
	pathFilter          = "auth/filter"
	pathSendCode        = "auth/account/code"
	pathRestorePassword = "auth/account/restore-password"
	pathUnlock          = "auth/account/unlock"
)

// RouteLanding is where Logout sends the navigator.
const RouteLanding = "/"

const (
	unavailableTitle   = "Service unavailable!"
	unavailableMessage = "Please reload the page to check the service."
)

// =============================================================================
// POLICY TABLE
// =============================================================================

// policy declares how one operation reports its outcome.
type policy struct {
	// successTitle is the title of the success alert. Empty means no alert.
	successTitle string
	// titles lists the recognised failure codes. The alert kind comes from
	// tracker.Interpret and the message from the server.
	titles map[int]string
	// silentOther suppresses the unavailable alert for unlisted failures.
	silentOther bool
}

var policies = map[string]policy{
	OpLogin: {
		titles: map[int]string{
			http.StatusUnauthorized: "Invalid credentials!",
		},
	},
	OpVerifyAccount: {
		successTitle: "Account verified!",
		titles: map[int]string{
			http.StatusForbidden: "Account locked!",
			http.StatusNotFound:  "Account not found!",
		},
		// Unlisted codes raise nothing.
		silentOther: true,
	},
	OpSendCode: {
		successTitle: "Code sent!",
	},
	OpRestorePassword: {
		successTitle: "Password restored!",
		titles: map[int]string{
			http.StatusUnprocessableEntity: "Oops! Invalid recovery code",
		},
	},
	OpUnlockAccount: {
		successTitle: "Account unlocked!",
		titles: map[int]string{
			http.StatusNotFound: "Account not found!",
			http.StatusConflict: "Account not unlocked!",
		},
	},
}

// alertSpec is one alert the policy asks for.
type alertSpec struct {
	kind    alerts.Kind
	title   string
	message string
}

// failureAlert returns the alert for a failed call, or false when the policy
// is silent for status.
func (p policy) failureAlert(status int, serverMessage string) (alertSpec, bool) {
	if title, ok := p.titles[status]; ok {
		return alertSpec{kind: tracker.Interpret(status).Kind, title: title, message: serverMessage}, true
	}
	if p.silentOther {
		return alertSpec{}, false
	}
	return alertSpec{kind: alerts.KindDanger, title: unavailableTitle, message: unavailableMessage}, true
}

// successAlert returns the alert for a successful call, or false when the
// policy raises none.
func (p policy) successAlert(serverMessage string) (alertSpec, bool) {
	if p.successTitle == "" {
		return alertSpec{}, false
	}
	return alertSpec{kind: tracker.Interpret(http.StatusOK).Kind, title: p.successTitle, message: serverMessage}, true
}
