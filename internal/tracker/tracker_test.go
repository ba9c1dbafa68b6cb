// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/clock"
)

func TestTracker_BeginOverwritesAndEndClears(t *testing.T) {
	tr := New(clock.NewManual(time.Unix(0, 0)))

	tr.Begin("login")
	tr.Begin("sendCode")
	assert.Equal(t, "sendCode", tr.Snapshot().ActiveOperation)
	assert.True(t, tr.Snapshot().Busy())

	tr.End()
	assert.False(t, tr.Snapshot().Busy())
}

func TestTracker_OutcomeDecays(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	tr := New(clk)

	tr.Begin("unlockAccount")
	tr.RecordOutcome(409, "not locked", clk.Now(), 5*time.Second)

	snap := tr.Snapshot()
	require.Equal(t, 409, snap.LastStatusCode)
	require.Equal(t, "not locked", snap.LastMessage)
	require.Equal(t, clk.Now(), snap.LastTimestamp)
	require.True(t, snap.Cooling)

	clk.Advance(5 * time.Second)
	snap = tr.Snapshot()
	assert.Zero(t, snap.LastStatusCode)
	assert.Empty(t, snap.LastMessage)
	assert.Empty(t, snap.ActiveOperation)
	assert.False(t, snap.Cooling)
}

func TestTracker_RecordOutcomeReplacesDecay(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	tr := New(clk)

	tr.RecordOutcome(404, "first", clk.Now(), 5*time.Second)
	clk.Advance(4 * time.Second)
	tr.RecordOutcome(200, "second", clk.Now(), 5*time.Second)
	require.Equal(t, 1, clk.Pending(), "only one decay timer")

	clk.Advance(2 * time.Second)
	assert.Equal(t, 200, tr.Snapshot().LastStatusCode, "first decay must not fire")

	clk.Advance(3 * time.Second)
	assert.Zero(t, tr.Snapshot().LastStatusCode)
}

func TestTracker_StopKeepsOutcome(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	tr := New(clk)

	tr.RecordOutcome(422, "bad code", clk.Now(), time.Second)
	tr.Stop()
	clk.Advance(time.Minute)

	assert.Equal(t, 422, tr.Snapshot().LastStatusCode)
	assert.False(t, tr.Snapshot().Cooling)
}

func TestInterpret(t *testing.T) {
	cases := []struct {
		status  int
		failure Failure
		kind    alerts.Kind
	}{
		{200, NoFailure, alerts.KindSuccess},
		{401, AuthenticationFailure, alerts.KindDanger},
		{403, AuthorizationFailure, alerts.KindWarning},
		{404, NotFound, alerts.KindDanger},
		{409, ConflictingState, alerts.KindWarning},
		{422, ValidationFailure, alerts.KindDanger},
		{500, TransportUnavailable, alerts.KindDanger},
		{0, TransportUnavailable, alerts.KindDanger},
	}
	for _, tc := range cases {
		m := Interpret(tc.status)
		assert.Equal(t, tc.failure, m.Failure, "status %d", tc.status)
		assert.Equal(t, tc.kind, m.Kind, "status %d", tc.status)
	}
	assert.Equal(t, "conflicting_state", ConflictingState.String())
}
