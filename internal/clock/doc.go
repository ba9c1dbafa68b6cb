// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clock provides the time source used by every timer-owning component.
//
// Alerts, the cooldown timer, and the outcome tracker never call time.AfterFunc
// directly. They schedule through a Clock so that the "one active timer of a
// kind" rules can be exercised deterministically.
//
// # Key Types
//
//   - Clock: Now plus AfterFunc
//   - Timer: handle returned by AfterFunc
//   - Manual: simulated clock advanced explicitly by tests
//
// # Usage
//
//	clk := clock.NewManual(time.Unix(0, 0))
//	clk.AfterFunc(time.Second, fn)
//	clk.Advance(time.Second) // fn runs here, on the caller's goroutine
package clock
