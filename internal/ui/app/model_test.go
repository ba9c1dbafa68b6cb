// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/clock"
	"github.com/jeranaias/accountctl/internal/store"
	"github.com/jeranaias/accountctl/internal/transport"
	"github.com/jeranaias/accountctl/internal/ui/styles"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type reply func() (*transport.Response, error)

func ok(message string, data any) reply {
	return func() (*transport.Response, error) {
		raw, _ := json.Marshal(data)
		return &transport.Response{HTTPStatus: 200, StatusCode: 200, Message: message, Data: raw}, nil
	}
}

func fail(status int, message string) reply {
	return func() (*transport.Response, error) {
		return nil, &transport.Error{HTTPStatus: status, StatusCode: status, Message: message}
	}
}

// pathTransport answers by request path; unknown paths fail like a dead server.
type pathTransport struct {
	mu      sync.Mutex
	replies map[string]reply
	paths   []string
}

func (p *pathTransport) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	p.mu.Lock()
	p.paths = append(p.paths, req.Path)
	r, found := p.replies[req.Path]
	p.mu.Unlock()
	if !found {
		return nil, errors.New("connection refused")
	}
	return r()
}

func (p *pathTransport) set(path string, r reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[path] = r
}

type harness struct {
	model tea.Model
	ctrl  *account.Controller
	store *store.Memory
	tr    *pathTransport
	clock *clock.Manual
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: store.NewMemory(),
		tr:    &pathTransport{replies: map[string]reply{}},
		clock: clock.NewManual(time.Unix(1700000000, 0)),
	}
	h.ctrl = account.New(h.tr, h.store, account.WithClock(h.clock))
	t.Cleanup(h.ctrl.Close)
	h.model = New(h.ctrl, WithTheme(styles.PlainTheme()), WithClock(h.clock))
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

// send delivers msg and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	return cmd
}

// run delivers msg, executes the returned command once and delivers its
// result. It is for commands that wrap a single controller call.
func (h *harness) run(t *testing.T, msg tea.Msg) {
	t.Helper()
	cmd := h.send(msg)
	require.NotNil(t, cmd, "expected a command")
	h.send(cmd())
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) route() string {
	return h.model.(Model).router.Current()
}

func (h *harness) view() string {
	return h.model.View()
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func signToken(t *testing.T) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ada@example.com", "first_name": "Ada", "last_name": "Lovelace",
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return raw
}

func (h *harness) fillIdentity() {
	h.typeText("ada@example.com")
	h.send(tab)
	h.typeText("１２３４５")
	h.send(tab)
	h.typeText("1990-05-17")
}

// =============================================================================
// SIGN IN AND SESSION
// =============================================================================

func TestLogin_SuccessGoesHome(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/login", ok("Welcome back", map[string]string{"token": signToken(t)}))

	h.typeText("ada@example.com")
	h.send(tab)
	h.typeText("secret")
	h.run(t, enter)

	assert.Equal(t, RouteHome, h.route())
	assert.True(t, h.ctrl.IsAuthenticated())
	v := h.view()
	assert.Contains(t, v, "Signed in as Ada Lovelace")
	assert.Contains(t, v, "Welcome back")
}

func TestLogin_EnterOnFirstFieldAdvances(t *testing.T) {
	h := newHarness(t)
	h.typeText("ada@example.com")
	h.send(enter)

	m := h.model.(Model)
	assert.Equal(t, 1, m.login.focus)
	assert.False(t, m.pending, "enter on the email field must not submit")
}

func TestLogin_BlankFieldIsNotSubmitted(t *testing.T) {
	h := newHarness(t)
	h.send(tab)
	h.typeText("secret")
	h.send(enter)

	assert.Empty(t, h.tr.paths)
	assert.Equal(t, 0, h.model.(Model).login.focus)
}

func TestLogin_FailureShowsAlert(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/login", fail(401, "Wrong password"))

	h.typeText("ada@example.com")
	h.send(tab)
	h.typeText("nope")
	h.run(t, enter)

	assert.Equal(t, RouteLogin, h.route())
	v := h.view()
	assert.Contains(t, v, "Invalid credentials!")
	assert.Contains(t, v, "Wrong password")
	assert.Contains(t, v, "last response: 401")

	h.send(tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.NotContains(t, h.view(), "Invalid credentials!")
}

func TestStartup_ValidTokenSkipsSignIn(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, store.SaveSession(h.store, store.Session{Token: "T", FirstName: "Ada"}))
	h.tr.set("auth/account/validate-token", ok("", nil))

	m := h.model.(Model)
	h.send(m.verifyCmd()())
	assert.Equal(t, RouteHome, h.route())
}

func TestStartup_NoTokenStaysOnSignIn(t *testing.T) {
	h := newHarness(t)

	m := h.model.(Model)
	h.send(m.verifyCmd()())
	assert.Equal(t, RouteLogin, h.route())
	assert.Empty(t, h.tr.paths)
}

func TestHome_LogoutAndExpiredSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, store.SaveSession(h.store, store.Session{Token: "T"}))
	h.tr.set("auth/account/validate-token", ok("", nil))
	h.send(h.model.(Model).verifyCmd()())
	require.Equal(t, RouteHome, h.route())

	h.send(keyRune('l'))
	assert.Equal(t, RouteLogin, h.route())
	assert.Zero(t, h.store.Len())

	// Session ended elsewhere while home is showing.
	require.NoError(t, store.SaveSession(h.store, store.Session{Token: "T"}))
	h.send(h.model.(Model).verifyCmd()())
	require.Equal(t, RouteHome, h.route())
	h.ctrl.HandleUnauthorized()
	h.send(tickMsg(time.Now()))
	assert.Equal(t, RouteLogin, h.route())
}

// =============================================================================
// RECOVERY AND UNLOCK
// =============================================================================

func TestRecover_FullFlow(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/filter", ok("Account exists", nil))
	h.tr.set("auth/account/code", ok("Code sent to your inbox", nil))
	h.tr.set("auth/account/restore-password", ok("Password changed", nil))

	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, RouteRecover, h.route())

	h.fillIdentity()
	h.run(t, enter)
	m := h.model.(Model)
	require.Equal(t, stepCode, m.recoverStep)
	assert.Equal(t, "12345", m.verified.CI, "full-width digits are normalised")

	h.run(t, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, h.view(), "Send code (3s)")
	assert.Contains(t, h.view(), "Code sent!")
	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlS}), "disabled while cooling down")

	h.clock.Advance(3 * time.Second)
	assert.NotContains(t, h.view(), "(0s)")
	assert.False(t, h.ctrl.Cooldown().ButtonDisabled)

	h.typeText("654321")
	h.run(t, enter)
	assert.Equal(t, RouteLogin, h.route())
}

func TestRecover_UnknownAccountStaysOnIdentify(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/filter", fail(404, "No match"))

	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.fillIdentity()
	h.run(t, enter)

	assert.Equal(t, stepIdentify, h.model.(Model).recoverStep)
	assert.Contains(t, h.view(), "Account not found!")

	h.send(esc)
	assert.Equal(t, RouteLogin, h.route())
}

func TestUnlock_NotLockedWarning(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/account/unlock", fail(409, "Account is not locked"))

	h.send(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, RouteUnlock, h.route())
	h.fillIdentity()
	h.run(t, enter)

	v := h.view()
	assert.Contains(t, v, "Account not unlocked!")
	assert.Contains(t, v, "Account is not locked")
	assert.Equal(t, RouteUnlock, h.route())
}

func TestTimingsChanged(t *testing.T) {
	h := newHarness(t)
	h.tr.set("auth/account/code", ok("", nil))

	h.send(TimingsChangedMsg{Timings: account.Timings{
		AlertLifetime:   time.Second,
		CooldownSeconds: 7,
		OutcomeDecay:    time.Second,
	}})

	require.True(t, h.ctrl.SendCode(context.Background(), account.Identity{Email: "a@x.com"}))
	assert.Equal(t, 7, h.ctrl.Cooldown().SecondsRemaining)
}

func TestWaitTimings(t *testing.T) {
	ch := make(chan account.Timings, 1)
	h := newHarness(t)
	m := New(h.ctrl, WithTheme(styles.PlainTheme()), WithTimingUpdates(ch))

	ch <- account.DefaultTimings()
	msg := m.waitTimings()()
	assert.Equal(t, TimingsChangedMsg{Timings: account.DefaultTimings()}, msg)

	close(ch)
	assert.Nil(t, m.waitTimings()())
	assert.Nil(t, New(h.ctrl, WithTheme(styles.PlainTheme())).waitTimings())
}

// =============================================================================
// ROUTER
// =============================================================================

func TestRouter(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, RouteLogin, r.Current())

	r.Push(RouteRecover)
	assert.Equal(t, RouteRecover, r.Current())

	r.Push(RouteLogin)
	assert.Equal(t, RouteLogin, r.Current())
}
