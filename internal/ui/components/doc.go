// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the accountctl TUI.
//
// # Alerts
//
// RenderAlert draws one alert as a bordered box coloured by kind, with its
// title, message and remaining lifetime. RenderAlertStack joins several,
// oldest first.
//
// # Header
//
// Header is the single-line title bar showing the signed-in user, the current
// route and the in-flight operation.
package components
