// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cooldown implements the one-second countdown that keeps a trigger
// button disabled after a rate-limited action.
//
// The timer is Idle or Running. Start always cancels a running countdown
// before arming a new one, so at most one recurring tick exists per Timer.
package cooldown
