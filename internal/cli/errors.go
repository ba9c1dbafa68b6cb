// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes shared by every command.
//
// Commands always return errors and let Execute decide how to show them.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/accountctl/internal/tracker"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates the service gave no structured response
	ExitNetworkError = 5
	// ExitNotFoundError indicates the account was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is a missing or malformed argument.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigError wraps a failure to load, validate or save configuration.
type ConfigError struct {
	Action string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s failed: %v", e.Action, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// OperationError reports an account operation that did not succeed. Its
// alerts were already printed by the command.
type OperationError struct {
	Operation string
	// Status is the last recorded status code, 0 when none arrived.
	Status int
	Code   int
}

func (e *OperationError) Error() string {
	switch {
	case e.Status == 0 && e.Code == ExitNetworkError:
		return fmt.Sprintf("%s failed: no response from the account service", e.Operation)
	case e.Status == 0:
		return fmt.Sprintf("%s failed", e.Operation)
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.Status)
}

// newOperationError classifies status with the tracker's interpretation table.
func newOperationError(op string, status int) *OperationError {
	return &OperationError{Operation: op, Status: status, Code: exitCodeForStatus(status)}
}

func exitCodeForStatus(status int) int {
	switch tracker.Interpret(status).Failure {
	case tracker.AuthenticationFailure, tracker.AuthorizationFailure:
		return ExitAuthError
	case tracker.NotFound:
		return ExitNotFoundError
	case tracker.TransportUnavailable:
		if status == 0 {
			return ExitNetworkError
		}
		return ExitGeneralError
	default:
		return ExitGeneralError
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCodeFor returns the process exit code for err.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitGeneralError
}

// DisplayError writes err for a human, or as a JSON error response in JSON
// mode. Operation errors are skipped; the command already reported them.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return
	}

	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(w, DimStyle.Render("Run 'accountctl --help' for usage."))
	}
}
