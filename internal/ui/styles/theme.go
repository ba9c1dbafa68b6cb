// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles shared by every screen.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style

	FieldFocused lipgloss.Style
	FieldBlurred lipgloss.Style

	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style

	Help    lipgloss.Style
	Busy    lipgloss.Style
	Outcome lipgloss.Style

	AlertBox lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		ColorProfile: termenv.ColorProfile(),
		IsDark:       termenv.HasDarkBackground(),
	}
	t.initStyles()
	return t
}

// PlainTheme creates a theme that renders without colour.
func PlainTheme() *Theme {
	t := &Theme{ColorProfile: termenv.Ascii, IsDark: true}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Cyan).MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary).Width(12)

	t.FieldFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Cyan).
		PaddingLeft(1)
	t.FieldBlurred = lipgloss.NewStyle().
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)

	t.Button = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)

	t.Help = lipgloss.NewStyle().Foreground(TextMuted)
	t.Busy = lipgloss.NewStyle().Foreground(Cyan)
	t.Outcome = lipgloss.NewStyle().Foreground(TextSecondary)

	t.AlertBox = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 2)
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth is the usable width inside the app padding, never below 30.
func (t *Theme) ContentWidth() int {
	w := t.Width - 2
	if w < 30 {
		return 30
	}
	return w
}
