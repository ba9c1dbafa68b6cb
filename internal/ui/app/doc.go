// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app is the Bubble Tea program for accountctl.

# Routes

	/          sign in (email, password)
	/home      signed-in landing page
	/recover   verify identity, send a recovery code, restore the password
	/unlock    unlock a locked account

Router is the Navigator handed to the account controller, so Logout moves the
UI the same way it would move any other front end.

# Update Loop

Controller operations block on the network, so each one runs inside a tea.Cmd
and reports back with a *DoneMsg. The view never caches controller state: a
100ms tick re-renders alerts, the cooldown and the outcome line straight from
the controller, which owns all the timers.

At start-up the stored token is verified once; success skips the sign-in
screen.
*/
package app
