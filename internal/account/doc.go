// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package account provides the session controller for the account service.
//
// The Controller owns authentication state and orchestrates login, logout,
// token verification, and the four account-recovery operations. Every
// operation except VerifyToken and Logout has the same shape:
//
//	mark busy -> clear alerts -> call transport -> branch on outcome -> clear busy
//
// Failures never reach the caller as errors. They become alerts in the
// operation's scope plus a false return. Which status codes raise which
// alert is declared once per operation in the policy table (policy.go);
// alert kinds come from tracker.Interpret.
//
// # Key Types
//
//   - Controller: the session controller
//   - Identity: the identity fields used by the recovery operations
//   - Timings: alert lifetime, cooldown length, outcome decay
//   - Metrics: Prometheus counters for operation outcomes
//
// # Usage
//
//	st := store.NewMemory()
//	ctrl, err := account.Connect(cfg.API.BaseURL, st, nil, account.WithLogger(logger))
//	if ctrl.VerifyToken(ctx) {
//	    // already signed in
//	}
//	if _, ok := ctrl.Login(ctx, email, password); !ok {
//	    for _, a := range ctrl.AlertsForScope(account.OpLogin) { ... }
//	}
//
// # Concurrency
//
// All methods are safe for concurrent use. Two operations may run at once;
// the tracker's active operation then shows the most recent one. It is not
// a lock and must not be used to suppress requests.
package account
