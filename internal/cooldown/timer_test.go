// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/accountctl/internal/clock"
)

func newTestTimer() (*Timer, *clock.Manual) {
	clk := clock.NewManual(time.Unix(0, 0))
	return New(clk), clk
}

func TestTimer_CountsDownAndReenables(t *testing.T) {
	timer, clk := newTestTimer()

	timer.Start(3)
	require.Equal(t, State{SecondsRemaining: 3, ButtonDisabled: true}, timer.State())
	require.True(t, timer.Running())

	clk.Advance(time.Second)
	assert.Equal(t, State{SecondsRemaining: 2, ButtonDisabled: true}, timer.State())

	clk.Advance(time.Second)
	assert.Equal(t, State{SecondsRemaining: 1, ButtonDisabled: true}, timer.State())

	clk.Advance(time.Second)
	assert.Equal(t, State{SecondsRemaining: 0, ButtonDisabled: false}, timer.State())
	assert.False(t, timer.Running())
	assert.Zero(t, clk.Pending(), "recurring tick is cancelled at zero")
}

func TestTimer_RestartMidCountdownKeepsSingleTick(t *testing.T) {
	timer, clk := newTestTimer()

	timer.Start(3)
	clk.Advance(time.Second)
	require.Equal(t, 2, timer.State().SecondsRemaining)

	timer.Start(3)
	require.Equal(t, 3, timer.State().SecondsRemaining)
	require.Equal(t, 1, clk.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, 2, timer.State().SecondsRemaining, "one decrement per second, not two")

	clk.Advance(2 * time.Second)
	assert.Equal(t, State{}, timer.State())
}

func TestTimer_CancelLeavesButtonState(t *testing.T) {
	timer, clk := newTestTimer()

	timer.Start(3)
	timer.Cancel()
	clk.Advance(5 * time.Second)

	assert.Equal(t, State{SecondsRemaining: 3, ButtonDisabled: true}, timer.State())
	assert.False(t, timer.Running())

	timer.Cancel()
	assert.False(t, timer.Running(), "cancel from idle is safe")
}

func TestTimer_ReleaseReenablesImmediately(t *testing.T) {
	timer, clk := newTestTimer()

	timer.Start(3)
	clk.Advance(time.Second)
	timer.Release()

	assert.Equal(t, State{}, timer.State())
	assert.Zero(t, clk.Pending())
}

func TestTimer_DisableStopsCountdownAndHoldsButton(t *testing.T) {
	timer, clk := newTestTimer()

	timer.Start(3)
	timer.Disable()
	clk.Advance(10 * time.Second)

	assert.Equal(t, State{SecondsRemaining: 0, ButtonDisabled: true}, timer.State())
	assert.False(t, timer.Running())
	assert.Zero(t, clk.Pending())

	timer.Start(2)
	clk.Advance(2 * time.Second)
	assert.Equal(t, State{}, timer.State())
}

func TestTimer_StartZeroIsIdle(t *testing.T) {
	timer, clk := newTestTimer()
	timer.Disable()

	timer.Start(0)
	assert.Equal(t, State{}, timer.State())
	assert.Zero(t, clk.Pending())
}
