// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/ui/styles"
	"github.com/jeranaias/accountctl/internal/util"
)

// =============================================================================
// ALERT RENDERING
// =============================================================================

const (
	alertMaxWidth = 60
	alertMinWidth = 30
)

// KindStyle returns the colour and ASCII indicator for an alert kind.
func KindStyle(kind alerts.Kind) (lipgloss.AdaptiveColor, string) {
	switch kind {
	case alerts.KindSuccess:
		return styles.Emerald, styles.AlertIndicators.Success
	case alerts.KindWarning:
		return styles.Amber, styles.AlertIndicators.Warning
	default:
		return styles.Rose, styles.AlertIndicators.Danger
	}
}

// RenderAlert renders one alert at most width cells wide.
func RenderAlert(theme *styles.Theme, a alerts.Alert, now time.Time, width int) string {
	maxWidth := alertMaxWidth
	if width > 0 && width < maxWidth {
		maxWidth = width
	}
	if maxWidth < alertMinWidth {
		maxWidth = alertMinWidth
	}
	// Border plus horizontal padding.
	textWidth := maxWidth - 6

	color, icon := KindStyle(a.Kind)
	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	lines := []string{
		iconStyle.Render(icon+" ") + titleStyle.Render(util.TruncateWidth(a.Title, textWidth-len(icon)-1)),
	}
	if a.Message != "" {
		lines = append(lines, messageStyle.Render(wrapText(a.Message, textWidth)))
	}

	hints := []string{"[ctrl+x] dismiss"}
	if secs := int(a.Remaining(now).Round(time.Second) / time.Second); secs > 0 {
		hints = append(hints, strconv.Itoa(secs)+"s")
	}
	lines = append(lines, hintStyle.Render(strings.Join(hints, "  ")))

	return theme.AlertBox.
		BorderForeground(color).
		MaxWidth(maxWidth).
		Render(strings.Join(lines, "\n"))
}

// RenderAlertStack renders alerts stacked vertically in the order given.
func RenderAlertStack(theme *styles.Theme, list []alerts.Alert, now time.Time, width int) string {
	if len(list) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(list))
	for _, a := range list {
		rendered = append(rendered, RenderAlert(theme, a, now, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// wrapText word-wraps text to maxWidth display cells. Words longer than a
// line are truncated.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		word = util.TruncateWidth(word, maxWidth)
		w := util.StringWidth(word)
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= maxWidth:
			line.WriteString(" ")
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
