// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cooldown

import (
	"sync"
	"time"

	"github.com/jeranaias/accountctl/internal/clock"
)

// TickInterval is the countdown granularity.
const TickInterval = time.Second

// DefaultSeconds is the anti-spam window after a code dispatch.
const DefaultSeconds = 3

// State is the externally visible countdown state.
type State struct {
	SecondsRemaining int
	ButtonDisabled   bool
}

// Timer is a single cancellable countdown.
type Timer struct {
	mu        sync.Mutex
	clock     clock.Clock
	remaining int
	disabled  bool
	running   bool
	gen       uint64
	tick      clock.Timer
}

// New creates an idle timer.
func New(clk clock.Clock) *Timer {
	return &Timer{clock: clk}
}

// Start disables the button and counts down from seconds, replacing any
// countdown already in progress.
func (t *Timer) Start(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	if seconds <= 0 {
		t.remaining = 0
		t.disabled = false
		return
	}

	t.remaining = seconds
	t.disabled = true
	t.running = true
	t.scheduleLocked()
}

// Cancel stops ticking. The button state is left as it is.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Release stops ticking and re-enables the button immediately.
func (t *Timer) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.remaining = 0
	t.disabled = false
}

// Disable stops any countdown and holds the button disabled until the next
// Start or Release.
func (t *Timer) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.remaining = 0
	t.disabled = true
}

// State returns the current countdown state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{SecondsRemaining: t.remaining, ButtonDisabled: t.disabled}
}

// Running reports whether a countdown is in progress.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// stopLocked invalidates the pending tick. Caller holds t.mu.
func (t *Timer) stopLocked() {
	t.gen++
	t.running = false
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
}

// scheduleLocked arms the next tick for the current generation. Caller holds t.mu.
func (t *Timer) scheduleLocked() {
	gen := t.gen
	t.tick = t.clock.AfterFunc(TickInterval, func() { t.onTick(gen) })
}

func (t *Timer) onTick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A tick from a cancelled or replaced countdown.
	if gen != t.gen || !t.running {
		return
	}

	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.disabled = false
		t.running = false
		t.tick = nil
		return
	}
	t.scheduleLocked()
}
