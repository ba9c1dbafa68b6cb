// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"sync"
	"time"

	"github.com/jeranaias/accountctl/internal/clock"
)

// DefaultDecay is how long an outcome stays visible.
const DefaultDecay = 5 * time.Second

// Snapshot is a point-in-time copy of the tracker state.
type Snapshot struct {
	// ActiveOperation is empty when nothing is in flight.
	ActiveOperation string
	LastStatusCode  int
	LastMessage     string
	LastTimestamp   time.Time
	// Cooling is true while an outcome decay is pending.
	Cooling bool
}

// Busy reports whether an operation is in flight.
func (s Snapshot) Busy() bool {
	return s.ActiveOperation != ""
}

// Tracker holds the in-flight marker and the decaying last outcome.
type Tracker struct {
	mu       sync.Mutex
	clock    clock.Clock
	active   string
	status   int
	message  string
	stamp    time.Time
	decay    clock.Timer
	decayGen uint64
}

// New creates an idle tracker.
func New(clk clock.Clock) *Tracker {
	return &Tracker{clock: clk}
}

// Begin marks name as the operation in flight.
func (t *Tracker) Begin(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = name
}

// End clears the in-flight marker.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = ""
}

// RecordOutcome stores the last outcome and re-arms the decay timer, which
// resets the status, message, and in-flight marker after decay.
func (t *Tracker) RecordOutcome(status int, message string, at time.Time, decay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	t.message = message
	t.stamp = at

	t.stopDecayLocked()
	if decay <= 0 {
		decay = DefaultDecay
	}
	gen := t.decayGen
	t.decay = t.clock.AfterFunc(decay, func() { t.onDecay(gen) })
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ActiveOperation: t.active,
		LastStatusCode:  t.status,
		LastMessage:     t.message,
		LastTimestamp:   t.stamp,
		Cooling:         t.decay != nil,
	}
}

// Stop cancels any pending decay without touching the recorded outcome.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopDecayLocked()
}

func (t *Tracker) stopDecayLocked() {
	t.decayGen++
	if t.decay != nil {
		t.decay.Stop()
		t.decay = nil
	}
}

func (t *Tracker) onDecay(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.decayGen {
		return
	}
	t.decay = nil
	t.status = 0
	t.message = ""
	t.active = ""
}
