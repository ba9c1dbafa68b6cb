// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings.
type KeyMap struct {
	Quit     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Back     key.Binding
	Dismiss  key.Binding
	Recover  key.Binding
	Unlock   key.Binding
	SendCode key.Binding
	Logout   key.Binding
	Verify   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "dismiss alert"),
		),
		Recover: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "recover password"),
		),
		Unlock: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "unlock account"),
		),
		SendCode: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "send code"),
		),
		Logout: key.NewBinding(
			key.WithKeys("l", "ctrl+o"),
			key.WithHelp("l", "log out"),
		),
		Verify: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "check session"),
		),
	}
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
