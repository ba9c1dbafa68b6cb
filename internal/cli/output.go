// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Styles, JSON responses and alert printing for commands.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for command headings
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)

	// LabelStyle is used for field labels in status output
	LabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(14)

	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// alertStyle returns the style and ASCII marker for an alert kind.
func alertStyle(kind alerts.Kind) (lipgloss.Style, string) {
	switch kind {
	case alerts.KindSuccess:
		return SuccessStyle, styles.AlertIndicators.Success
	case alerts.KindWarning:
		return WarningStyle, styles.AlertIndicators.Warning
	default:
		return ErrorStyle, styles.AlertIndicators.Danger
	}
}

// =============================================================================
// JSON RESPONSES
// =============================================================================

// JSONResponse is the response format printed in --json mode.
type JSONResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	// Error is nil on success.
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response carrying err's message.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write prints the response as indented JSON.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// alertJSON is the wire form of an alert.
type alertJSON struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Scope   string `json:"scope"`
}

func alertsJSON(list []alerts.Alert) []alertJSON {
	out := make([]alertJSON, 0, len(list))
	for _, a := range list {
		out = append(out, alertJSON{Kind: string(a.Kind), Title: a.Title, Message: a.Message, Scope: a.Scope})
	}
	return out
}

// =============================================================================
// HUMAN OUTPUT
// =============================================================================

// printAlerts writes one line per alert, oldest first.
func printAlerts(w io.Writer, list []alerts.Alert) {
	for _, a := range list {
		style, marker := alertStyle(a.Kind)
		line := style.Render(marker + " " + a.Title)
		if a.Message != "" {
			line += " " + a.Message
		}
		fmt.Fprintln(w, line)
	}
}

// printField writes an aligned "label value" line.
func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, LabelStyle.Render(label)+value)
}
