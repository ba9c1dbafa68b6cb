// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"net/http"

	"github.com/jeranaias/accountctl/internal/alerts"
)

// =============================================================================
// STATUS INTERPRETATION
// =============================================================================

// Failure classifies the outcome of a remote operation.
type Failure int

const (
	// NoFailure is a 200 response.
	NoFailure Failure = iota
	// AuthenticationFailure is a 401: bad credentials or expired session.
	AuthenticationFailure
	// AuthorizationFailure is a 403: resource locked or forbidden.
	AuthorizationFailure
	// NotFound is a 404.
	NotFound
	// ConflictingState is a 409, e.g. unlocking an account that is not locked.
	ConflictingState
	// ValidationFailure is a 422, e.g. a wrong recovery code.
	ValidationFailure
	// TransportUnavailable covers network errors, timeouts, missing structured
	// responses, and any status not listed above.
	TransportUnavailable
)

// String returns the failure name.
func (f Failure) String() string {
	switch f {
	case NoFailure:
		return "ok"
	case AuthenticationFailure:
		return "authentication_failure"
	case AuthorizationFailure:
		return "authorization_failure"
	case NotFound:
		return "not_found"
	case ConflictingState:
		return "conflicting_state"
	case ValidationFailure:
		return "validation_failure"
	default:
		return "transport_unavailable"
	}
}

// Meaning is the interpretation of one status code.
type Meaning struct {
	Failure Failure
	Kind    alerts.Kind
}

var statusTable = map[int]Meaning{
	http.StatusOK:                  {NoFailure, alerts.KindSuccess},
	http.StatusUnauthorized:        {AuthenticationFailure, alerts.KindDanger},
	http.StatusForbidden:           {AuthorizationFailure, alerts.KindWarning},
	http.StatusNotFound:            {NotFound, alerts.KindDanger},
	http.StatusConflict:            {ConflictingState, alerts.KindWarning},
	http.StatusUnprocessableEntity: {ValidationFailure, alerts.KindDanger},
}

// Interpret maps a status code to its failure class and alert kind.
// Zero means no structured response was received.
func Interpret(status int) Meaning {
	if m, ok := statusTable[status]; ok {
		return m
	}
	return Meaning{Failure: TransportUnavailable, Kind: alerts.KindDanger}
}
