// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManual_FiresInDueOrder(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	var order []string

	clk.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clk.AfterFunc(time.Second, func() { order = append(order, "a") })
	clk.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	clk.Advance(1500 * time.Millisecond)
	require.Equal(t, []string{"a"}, order)

	clk.Advance(time.Second)
	require.Equal(t, []string{"a", "b", "c"}, order)
	require.Equal(t, time.Unix(0, 0).Add(2500*time.Millisecond), clk.Now())
}

func TestManual_StopPreventsCallback(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop(), "second Stop reports nothing pending")

	clk.Advance(time.Minute)
	require.False(t, fired)
	require.Zero(t, clk.Pending())
}

func TestManual_RescheduleDuringAdvance(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			clk.AfterFunc(time.Second, tick)
		}
	}
	clk.AfterFunc(time.Second, tick)

	clk.Advance(3 * time.Second)
	require.Equal(t, 3, ticks)

	clk.Advance(10 * time.Second)
	require.Equal(t, 5, ticks)
	require.Zero(t, clk.Pending())
}

func TestManual_StopAfterFireReturnsFalse(t *testing.T) {
	clk := NewManual(time.Unix(0, 0))
	timer := clk.AfterFunc(time.Millisecond, func() {})
	clk.Advance(time.Millisecond)
	require.False(t, timer.Stop())
}
