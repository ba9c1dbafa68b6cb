// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/ui/components"
	"github.com/jeranaias/accountctl/internal/util"
)

// routeScopes lists the alert scopes shown on each route.
var routeScopes = map[string][]string{
	RouteLogin:   {account.OpLogin},
	RouteHome:    {alerts.GlobalScope},
	RouteRecover: {account.OpVerifyAccount, account.OpSendCode, account.OpRestorePassword},
	RouteUnlock:  {account.OpUnlockAccount},
}

// visibleAlerts returns the alerts for the current route, oldest first.
func (m Model) visibleAlerts() []alerts.Alert {
	seen := make(map[int]bool)
	var out []alerts.Alert
	for _, scope := range routeScopes[m.route] {
		for _, a := range m.ctrl.AlertsForScope(scope) {
			if !seen[a.ID] {
				seen[a.ID] = true
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// View renders the current route.
func (m Model) View() string {
	t := m.theme
	width := t.ContentWidth()

	m.header.User = ""
	if m.ctrl.IsAuthenticated() {
		if sess, ok := m.ctrl.Session(); ok {
			m.header.User = sess.DisplayName()
		}
	}
	m.header.Activity = ""
	if snap := m.ctrl.Outcome(); snap.Busy() {
		m.header.Activity = m.spinner.View() + " " + snap.ActiveOperation
	}

	var body string
	switch m.route {
	case RouteHome:
		body = m.homeView()
	case RouteRecover:
		body = m.recoverView()
	case RouteUnlock:
		body = m.unlockView()
	default:
		body = m.loginView()
	}

	sections := []string{m.header.View(), "", body}
	if line := m.outcomeLine(width); line != "" {
		sections = append(sections, "", line)
	}
	if stack := components.RenderAlertStack(t, m.visibleAlerts(), m.clock.Now(), width); stack != "" {
		sections = append(sections, "", stack)
	}
	return t.App.Render(strings.Join(sections, "\n"))
}

func (m Model) loginView() string {
	t := m.theme
	return strings.Join([]string{
		t.Title.Render("Sign in"),
		m.login.view(t),
		"",
		t.Help.Render(helpLine(m.keys.Submit, m.keys.Next, m.keys.Recover, m.keys.Unlock, m.keys.Quit)),
	}, "\n")
}

func (m Model) homeView() string {
	t := m.theme
	lines := []string{t.Title.Render("Welcome")}
	if sess, ok := m.ctrl.Session(); ok {
		lines = append(lines, "Signed in as "+sess.DisplayName())
		if sess.Email != "" {
			lines = append(lines, t.Subtitle.Render(sess.Email))
		}
	}
	if m.notice != "" {
		lines = append(lines, "", t.Outcome.Render(m.notice))
	}
	lines = append(lines, "", t.Help.Render(helpLine(m.keys.Verify, m.keys.Logout, m.keys.Quit)))
	return strings.Join(lines, "\n")
}

func (m Model) recoverView() string {
	t := m.theme
	if m.recoverStep == stepIdentify {
		return strings.Join([]string{
			t.Title.Render("Recover password"),
			t.Subtitle.Render("Confirm who you are first."),
			"",
			m.identity.view(t),
			"",
			t.Help.Render(helpLine(m.keys.Submit, m.keys.Next, m.keys.Back)),
		}, "\n")
	}

	cd := m.ctrl.Cooldown()
	button := t.Button.Render("Send code")
	if cd.ButtonDisabled {
		label := "Send code"
		if cd.SecondsRemaining > 0 {
			label = fmt.Sprintf("Send code (%ds)", cd.SecondsRemaining)
		}
		button = t.ButtonDisabled.Render(label)
	}

	return strings.Join([]string{
		t.Title.Render("Recover password"),
		t.Subtitle.Render("Account: " + m.verified.Email),
		"",
		button,
		"",
		m.code.view(t),
		"",
		t.Help.Render(helpLine(m.keys.SendCode, m.keys.Submit, m.keys.Back)),
	}, "\n")
}

func (m Model) unlockView() string {
	t := m.theme
	return strings.Join([]string{
		t.Title.Render("Unlock account"),
		m.unlock.view(t),
		"",
		t.Help.Render(helpLine(m.keys.Submit, m.keys.Next, m.keys.Back)),
	}, "\n")
}

// outcomeLine shows the last recorded status until it decays.
func (m Model) outcomeLine(width int) string {
	snap := m.ctrl.Outcome()
	if snap.LastStatusCode == 0 && snap.LastMessage == "" {
		return ""
	}
	line := fmt.Sprintf("last response: %d", snap.LastStatusCode)
	if snap.LastMessage != "" {
		line += " " + snap.LastMessage
	}
	return m.theme.Outcome.Render(util.TruncateWidth(line, width))
}
