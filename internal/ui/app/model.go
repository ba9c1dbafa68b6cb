// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/clock"
	"github.com/jeranaias/accountctl/internal/ui/components"
	"github.com/jeranaias/accountctl/internal/ui/styles"
)

// Recovery screen steps.
const (
	stepIdentify = iota
	stepCode
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole program.
type Model struct {
	ctrl   *account.Controller
	router *Router
	theme  *styles.Theme
	keys   KeyMap
	clock  clock.Clock
	ctx    context.Context
	logger *slog.Logger

	header  *components.Header
	spinner spinner.Model

	login    form
	identity form
	code     form
	unlock   form

	// route is the route the forms were last prepared for.
	route       string
	recoverStep int
	verified    account.Identity

	// pending is set while a command started by this model is running.
	pending bool
	// notice is the last server message shown under the form.
	notice string

	timings <-chan account.Timings
	width   int
	height  int
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context passed to controller operations.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithTheme replaces the terminal-detected theme.
func WithTheme(t *styles.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithClock sets the clock used for alert countdowns. It should match the
// controller's clock.
func WithClock(clk clock.Clock) Option {
	return func(m *Model) { m.clock = clk }
}

// WithTimingUpdates applies timings received on ch to the controller.
func WithTimingUpdates(ch <-chan account.Timings) Option {
	return func(m *Model) { m.timings = ch }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// New creates the program model around ctrl.
func New(ctrl *account.Controller, opts ...Option) Model {
	m := Model{
		ctrl:     ctrl,
		keys:     DefaultKeyMap(),
		clock:    clock.Real(),
		ctx:      context.Background(),
		logger:   slog.Default(),
		login:    newForm(emailField, passwordField),
		identity: newForm(emailField, ciField, birthdateField),
		code:     newForm(codeField),
		unlock:   newForm(emailField, ciField, birthdateField),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.theme == nil {
		m.theme = styles.NewTheme()
	}
	if m.router == nil {
		m.router = NewRouter()
	}

	m.header = components.NewHeader(m.theme)
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.MiniDot
	m.spinner.Style = m.theme.Busy
	m.syncRoute()
	return m
}

// Router returns the model's router.
func (m Model) Router() *Router {
	return m.router
}

// Init verifies the stored session and starts the refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.verifyCmd(),
		tick(),
		m.spinner.Tick,
		textinput.Blink,
		m.waitTimings(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitTimings() tea.Cmd {
	if m.timings == nil {
		return nil
	}
	ch := m.timings
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return TimingsChangedMsg{Timings: t}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.Width = msg.Width
		w := m.theme.ContentWidth() - 16
		for _, f := range []*form{&m.login, &m.identity, &m.code, &m.unlock} {
			f.setWidth(w)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.syncRoute(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TimingsChangedMsg:
		m.ctrl.SetTimings(msg.Timings)
		m.logger.Debug("timings updated from config")
		return m, m.waitTimings()

	case VerifyDoneMsg:
		m.pending = false
		switch {
		case msg.OK && m.router.Current() == RouteLogin:
			m.router.Push(RouteHome)
		case !msg.OK && m.router.Current() == RouteHome:
			m.router.Push(RouteLogin)
		}
		return m, m.syncRoute()

	case LoginDoneMsg:
		m.pending = false
		if msg.OK {
			m.login.reset()
			m.notice = msg.Result.Message
			m.router.Push(RouteHome)
		}
		return m, m.syncRoute()

	case VerifyAccountDoneMsg:
		m.pending = false
		if msg.OK {
			m.verified = msg.Identity
			m.recoverStep = stepCode
			return m, m.code.focusAt(0)
		}
		return m, nil

	case SendCodeDoneMsg:
		m.pending = false
		return m, nil

	case RestoreDoneMsg:
		m.pending = false
		if msg.OK {
			m.router.Push(RouteLogin)
		}
		return m, m.syncRoute()

	case UnlockDoneMsg:
		m.pending = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.focusedForm().updateOrNil(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		if list := m.visibleAlerts(); len(list) > 0 {
			m.ctrl.DismissAlert(list[len(list)-1].ID)
		}
		return m, nil
	}

	switch m.route {
	case RouteHome:
		return m.handleHomeKey(msg)
	case RouteRecover:
		return m.handleRecoverKey(msg)
	case RouteUnlock:
		return m.handleUnlockKey(msg)
	default:
		return m.handleLoginKey(msg)
	}
}

// formKey applies focus movement and typing to f. submit is true when Enter
// was pressed on the last field of a complete form; Enter elsewhere advances.
func (m *Model) formKey(f *form, msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch {
	case key.Matches(msg, m.keys.Next):
		return f.next(), false
	case key.Matches(msg, m.keys.Prev):
		return f.prev(), false
	case key.Matches(msg, m.keys.Submit):
		if !f.onLast() {
			return f.next(), false
		}
		if m.pending {
			return nil, false
		}
		if i := f.firstEmpty(); i >= 0 {
			return f.focusAt(i), false
		}
		return nil, true
	}
	return f.update(msg), false
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Recover):
		m.router.Push(RouteRecover)
		return m, m.syncRoute()
	case key.Matches(msg, m.keys.Unlock):
		m.router.Push(RouteUnlock)
		return m, m.syncRoute()
	}

	cmd, submit := m.formKey(&m.login, msg)
	if submit {
		m.pending = true
		return m, m.loginCmd(m.login.value(0), m.login.value(1))
	}
	return m, cmd
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logout):
		m.notice = ""
		m.ctrl.Logout(m.router)
		return m, m.syncRoute()
	case key.Matches(msg, m.keys.Verify):
		if m.pending {
			return m, nil
		}
		m.pending = true
		return m, m.verifyCmd()
	}
	return m, nil
}

func (m Model) handleRecoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		if m.recoverStep == stepCode {
			m.recoverStep = stepIdentify
			return m, m.identity.focusAt(0)
		}
		m.router.Push(RouteLogin)
		return m, m.syncRoute()
	}

	if m.recoverStep == stepIdentify {
		cmd, submit := m.formKey(&m.identity, msg)
		if submit {
			m.pending = true
			return m, m.verifyAccountCmd(identityFrom(&m.identity))
		}
		return m, cmd
	}

	if key.Matches(msg, m.keys.SendCode) {
		if m.pending || m.ctrl.Cooldown().ButtonDisabled {
			return m, nil
		}
		m.pending = true
		return m, m.sendCodeCmd(m.verified)
	}
	cmd, submit := m.formKey(&m.code, msg)
	if submit {
		m.pending = true
		return m, m.restoreCmd(m.verified, m.code.value(0))
	}
	return m, cmd
}

func (m Model) handleUnlockKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.router.Push(RouteLogin)
		return m, m.syncRoute()
	}
	cmd, submit := m.formKey(&m.unlock, msg)
	if submit {
		m.pending = true
		return m, m.unlockCmd(identityFrom(&m.unlock))
	}
	return m, cmd
}

func identityFrom(f *form) account.Identity {
	return account.Identity{Email: f.value(0), CI: f.value(1), Birthdate: f.value(2)}
}

// syncRoute prepares the forms when the router has moved since the last call,
// and leaves /home when the session has ended underneath it.
func (m *Model) syncRoute() tea.Cmd {
	if m.router.Current() == RouteHome && !m.ctrl.IsAuthenticated() && !m.pending {
		m.router.Push(RouteLogin)
	}

	current := m.router.Current()
	if current == m.route {
		return nil
	}
	m.route = current
	m.header.Route = current

	switch current {
	case RouteLogin:
		return m.login.focusAt(0)
	case RouteRecover:
		m.recoverStep = stepIdentify
		m.code.reset()
		return m.identity.focusAt(0)
	case RouteUnlock:
		return m.unlock.focusAt(0)
	}
	return nil
}

// focusedForm returns the form receiving typed input on the current route.
func (m *Model) focusedForm() *form {
	switch m.route {
	case RouteLogin:
		return &m.login
	case RouteRecover:
		if m.recoverStep == stepCode {
			return &m.code
		}
		return &m.identity
	case RouteUnlock:
		return &m.unlock
	}
	return nil
}

func (f *form) updateOrNil(msg tea.Msg) tea.Cmd {
	if f == nil {
		return nil
	}
	return f.update(msg)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) verifyCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return VerifyDoneMsg{OK: ctrl.VerifyToken(ctx)}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		res, ok := ctrl.Login(ctx, email, password)
		return LoginDoneMsg{OK: ok, Result: res}
	}
}

func (m Model) verifyAccountCmd(id account.Identity) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return VerifyAccountDoneMsg{OK: ctrl.VerifyAccount(ctx, id), Identity: id}
	}
}

func (m Model) sendCodeCmd(id account.Identity) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return SendCodeDoneMsg{OK: ctrl.SendCode(ctx, id)}
	}
}

func (m Model) restoreCmd(id account.Identity, code string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return RestoreDoneMsg{OK: ctrl.RestorePassword(ctx, id, code)}
	}
}

func (m Model) unlockCmd(id account.Identity) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.UnlockAccount(ctx, id)
		return UnlockDoneMsg{}
	}
}
