// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/accountctl/internal/ui/styles"
	"github.com/jeranaias/accountctl/internal/util"
)

// Header is the title bar.
type Header struct {
	Title string
	// User is the signed-in display name, empty when signed out.
	User  string
	Route string
	// Activity is the spinner frame and operation name while busy.
	Activity string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "accountctl", Width: 80, theme: theme}
}

// View renders the header on one line, dropping the user name first when
// space runs out.
func (h *Header) View() string {
	width := h.Width
	if width < 30 {
		width = 30
	}
	inner := width - 2

	left := h.theme.HeaderTitle.Render(h.Title)
	if h.Route != "" {
		left += h.theme.HeaderUser.Render(" " + h.Route)
	}

	var right []string
	if h.Activity != "" {
		right = append(right, h.theme.Busy.Render(h.Activity))
	}
	if h.User != "" {
		right = append(right, h.theme.HeaderUser.Render(h.User))
	}
	rightText := strings.Join(right, "  ")

	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 && h.User != "" {
		avail := inner - lipgloss.Width(left) - 1
		if h.Activity != "" {
			avail -= lipgloss.Width(h.theme.Busy.Render(h.Activity)) + 2
		}
		user := util.TruncateWidth(h.User, avail)
		right = right[:len(right)-1]
		if user != "" {
			right = append(right, h.theme.HeaderUser.Render(user))
		}
		rightText = strings.Join(right, "  ")
		gap = inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	}
	if gap < 1 {
		gap = 1
	}

	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightText)
}
