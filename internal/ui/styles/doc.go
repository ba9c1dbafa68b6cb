// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colour palette and lipgloss styles for the
accountctl TUI.

All colours are lipgloss AdaptiveColor values so the same theme works on light
and dark terminals.

# Color System (colors.go)

  - Cyan: brand colour, focused inputs
  - Emerald: success alerts
  - Amber: warning alerts, disabled buttons
  - Rose: danger alerts

# Theme (theme.go)

Theme bundles the styles used by the screens and components. NewTheme detects
the terminal profile with termenv; PlainTheme renders without colour and is
what tests use.

# Alert Indicators

AlertIndicators pairs each alert kind with an ASCII marker so alerts stay
distinguishable without colour.
*/
package styles
