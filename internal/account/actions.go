// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package account

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jeranaias/accountctl/internal/transport"
)

// =============================================================================
// IDENTITY
// =============================================================================

// Identity holds the fields used to look up an account for recovery.
type Identity struct {
	Email string
	// CI is the national identity number as typed.
	CI string
	// Birthdate is passed through unchanged, e.g. "1990-05-17".
	Birthdate string
}

// query encodes id for the account filter. A numeric CI is normalized to its
// integer form there; request bodies carry it as typed.
func (id Identity) query() url.Values {
	ci := id.CI
	if n, err := strconv.ParseInt(strings.TrimSpace(ci), 10, 64); err == nil {
		ci = strconv.FormatInt(n, 10)
	}
	return url.Values{
		"email":     {id.Email},
		"ci":        {ci},
		"birthdate": {id.Birthdate},
	}
}

type identityBody struct {
	Email        string `json:"email"`
	CI           string `json:"ci"`
	Birthdate    string `json:"birthdate"`
	RecoveryCode string `json:"recovery_code,omitempty"`
}

func (id Identity) body() identityBody {
	return identityBody{Email: id.Email, CI: id.CI, Birthdate: id.Birthdate}
}

// =============================================================================
// RECOVERY OPERATIONS
// =============================================================================

// VerifyAccount checks that an account matching id exists and can be
// recovered. 403 and 404 raise alerts; other failures are silent.
func (c *Controller) VerifyAccount(ctx context.Context, id Identity) bool {
	return c.perform(ctx, OpVerifyAccount, transport.Request{
		Method: http.MethodGet,
		Path:   pathFilter,
		Query:  id.query(),
	}, nil)
}

// SendCode requests a recovery code. The trigger button stays disabled while
// the request is in flight and the countdown starts once the server accepts
// it; any failure re-enables it at once.
func (c *Controller) SendCode(ctx context.Context, id Identity) bool {
	c.cooldown.Disable()

	ok := c.perform(ctx, OpSendCode, transport.Request{
		Method: http.MethodPut,
		Path:   pathSendCode,
		Body:   id.body(),
	}, nil)
	if !ok {
		c.cooldown.Release()
		return false
	}
	c.cooldown.Start(c.currentTimings().CooldownSeconds)
	return true
}

// RestorePassword sets a new password using the emailed recovery code.
func (c *Controller) RestorePassword(ctx context.Context, id Identity, recoveryCode string) bool {
	body := id.body()
	body.RecoveryCode = recoveryCode
	return c.perform(ctx, OpRestorePassword, transport.Request{
		Method: http.MethodPut,
		Path:   pathRestorePassword,
		Body:   body,
	}, nil)
}

// UnlockAccount asks the server to unlock a locked account. The outcome is
// reported only through alerts.
func (c *Controller) UnlockAccount(ctx context.Context, id Identity) {
	c.perform(ctx, OpUnlockAccount, transport.Request{
		Method: http.MethodPut,
		Path:   pathUnlock,
		Body:   id.body(),
	}, nil)
}

// =============================================================================
// OPERATION SKELETON
// =============================================================================

// perform runs one operation: mark busy, clear alerts, call the transport,
// report the outcome, clear busy. onOK runs for a 200 envelope and may still
// fail the operation.
func (c *Controller) perform(ctx context.Context, op string, req transport.Request, onOK func(*transport.Response) error) bool {
	c.tracker.Begin(op)
	defer c.tracker.End()

	c.alerts.Clear()

	pol := policies[op]
	start := c.clock.Now()

	resp, err := c.transport.Do(ctx, req)
	if err == nil && resp.OK() && onOK != nil {
		err = onOK(resp)
	}

	status := statusOf(resp, err)
	message := messageOf(resp, err)
	timings := c.currentTimings()

	c.tracker.RecordOutcome(status, message, c.clock.Now(), timings.OutcomeDecay)
	c.metrics.observe(op, status, c.clock.Now().Sub(start))

	if transport.StatusOf(err) == http.StatusUnauthorized {
		c.HandleUnauthorized()
	}

	switch {
	case err != nil:
		c.logger.Debug("operation failed", "operation", op, "status", status, "error", err)
		if a, ok := pol.failureAlert(transport.StatusOf(err), transport.MessageOf(err)); ok {
			c.alerts.Push(a.kind, a.title, a.message, op, timings.AlertLifetime)
		}
		return false
	case !resp.OK():
		// 2xx transport with a non-200 envelope fails silently.
		c.logger.Debug("operation rejected", "operation", op, "status", status)
		return false
	default:
		c.logger.Debug("operation succeeded", "operation", op)
		if a, ok := pol.successAlert(resp.Message); ok {
			c.alerts.Push(a.kind, a.title, a.message, op, timings.AlertLifetime)
		}
		return true
	}
}

// statusOf returns the status to record for an outcome. 0 means no
// structured response, including a 200 whose payload could not be used.
func statusOf(resp *transport.Response, err error) int {
	if err != nil {
		return transport.StatusOf(err)
	}
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func messageOf(resp *transport.Response, err error) string {
	if err != nil {
		if msg := transport.MessageOf(err); msg != "" {
			return msg
		}
		if transport.StatusOf(err) == 0 {
			return unavailableMessage
		}
		return ""
	}
	if resp == nil {
		return ""
	}
	return resp.Message
}
