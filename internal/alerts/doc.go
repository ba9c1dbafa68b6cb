// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package alerts provides the transient notification queue shown by the UI.
//
// Alerts are scoped to a UI region ("login", "sendCode", ...). Alerts in the
// "global" scope are visible from every region. Each alert removes itself
// after its lifetime unless it is dismissed or the queue is cleared first.
//
// # Key Types
//
//   - Kind: success, warning, or danger
//   - Alert: a single notification
//   - Queue: ordered, timer-owning collection of alerts
//
// # Usage
//
//	q := alerts.NewQueue(clock.Real())
//	id := q.Push(alerts.KindDanger, "Invalid credentials", msg, "login", 0)
//	visible := q.ForScope("login")
//	q.Remove(id)
package alerts
