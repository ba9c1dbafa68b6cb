// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package account

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/accountctl/internal/alerts"
	"github.com/jeranaias/accountctl/internal/clock"
	"github.com/jeranaias/accountctl/internal/cooldown"
	"github.com/jeranaias/accountctl/internal/store"
	"github.com/jeranaias/accountctl/internal/token"
	"github.com/jeranaias/accountctl/internal/tracker"
	"github.com/jeranaias/accountctl/internal/transport"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Transport sends one request to the account API. Structured failures are
// returned as *transport.Error.
type Transport interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// TokenCodec decodes the profile claims from a session token.
type TokenCodec interface {
	Decode(raw string) (token.Claims, error)
}

// Navigator moves the UI to a route.
type Navigator interface {
	Push(route string)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Timings are the controller's timer settings.
type Timings struct {
	AlertLifetime   time.Duration
	CooldownSeconds int
	OutcomeDecay    time.Duration
}

// DefaultTimings returns the built-in timings.
func DefaultTimings() Timings {
	return Timings{
		AlertLifetime:   alerts.DefaultLifetime,
		CooldownSeconds: cooldown.DefaultSeconds,
		OutcomeDecay:    tracker.DefaultDecay,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock driving every timer.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCodec replaces the token codec.
func WithCodec(codec TokenCodec) Option {
	return func(c *Controller) { c.codec = codec }
}

// WithTimings sets alert lifetime, cooldown length, and outcome decay.
func WithTimings(t Timings) Option {
	return func(c *Controller) { c.timings = t }
}

// WithMetrics records operation outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the session and notification controller.
type Controller struct {
	transport Transport
	store     store.Store
	codec     TokenCodec
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *Metrics

	alerts   *alerts.Queue
	cooldown *cooldown.Timer
	tracker  *tracker.Tracker

	mu            sync.RWMutex
	authenticated bool
	timings       Timings
}

// New creates a controller. Authentication state starts from whatever token
// st already holds.
func New(tr Transport, st store.Store, opts ...Option) *Controller {
	c := &Controller{
		transport: tr,
		store:     st,
		codec:     token.NewCodec(),
		clock:     clock.Real(),
		logger:    slog.Default(),
		timings:   DefaultTimings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.alerts = alerts.NewQueue(c.clock)
	c.alerts.SetDefaultLifetime(c.timings.AlertLifetime)
	c.cooldown = cooldown.New(c.clock)
	c.tracker = tracker.New(c.clock)

	c.authenticated = store.Token(st) != ""
	return c
}

// Connect builds an HTTP transport for baseURL wired to the controller: the
// bearer token comes from st and any 401 ends the session.
func Connect(baseURL string, st store.Store, topts []transport.Option, opts ...Option) (*Controller, error) {
	var c *Controller
	all := make([]transport.Option, 0, len(topts)+2)
	all = append(all, topts...)
	all = append(all,
		transport.WithTokenSource(func() string { return store.Token(st) }),
		transport.WithUnauthorizedHandler(func() { c.HandleUnauthorized() }),
	)
	client, err := transport.New(baseURL, all...)
	if err != nil {
		return nil, err
	}
	c = New(client, st, opts...)
	return c, nil
}

// Close stops every pending timer. The session store is left untouched.
func (c *Controller) Close() {
	c.alerts.Clear()
	c.cooldown.Cancel()
	c.tracker.Stop()
}

// SetTimings applies new timer settings to subsequent operations.
func (c *Controller) SetTimings(t Timings) {
	c.mu.Lock()
	c.timings = t
	c.mu.Unlock()
	c.alerts.SetDefaultLifetime(t.AlertLifetime)
}

func (c *Controller) currentTimings() Timings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timings
}

// =============================================================================
// PRODUCED SURFACE
// =============================================================================

// IsAuthenticated reports whether a session is active.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// Session returns the stored session record.
func (c *Controller) Session() (store.Session, bool) {
	sess, ok, err := store.LoadSession(c.store)
	if err != nil {
		c.logger.Warn("failed to read session", "error", err)
		return store.Session{}, false
	}
	return sess, ok
}

// AlertsForScope returns the alerts visible from scope, in insertion order.
func (c *Controller) AlertsForScope(scope string) []alerts.Alert {
	return c.alerts.ForScope(scope)
}

// DismissAlert removes one alert.
func (c *Controller) DismissAlert(id int) {
	c.alerts.Remove(id)
}

// Outcome returns the operation tracker state.
func (c *Controller) Outcome() tracker.Snapshot {
	return c.tracker.Snapshot()
}

// Cooldown returns the code-dispatch cooldown state.
func (c *Controller) Cooldown() cooldown.State {
	return c.cooldown.State()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// HandleUnauthorized ends the session after any 401 response.
func (c *Controller) HandleUnauthorized() {
	c.logger.Debug("unauthorized response, ending session")
	c.endSession()
}

// Logout ends the session and sends nav to the landing route. It makes no
// network call.
func (c *Controller) Logout(nav Navigator) {
	c.endSession()
	if nav != nil {
		nav.Push(RouteLanding)
	}
}

// VerifyToken checks the stored token with the server. Any failure ends the
// session. It raises no alerts and does not mark the controller busy, so it
// is safe to call speculatively at startup.
func (c *Controller) VerifyToken(ctx context.Context) bool {
	start := c.clock.Now()

	if store.Token(c.store) == "" {
		c.endSession()
		c.metrics.observe(OpVerifyToken, 0, 0)
		return false
	}

	resp, err := c.transport.Do(ctx, transport.Request{Method: "GET", Path: pathValidateToken})
	status := statusOf(resp, err)
	c.metrics.observe(OpVerifyToken, status, c.clock.Now().Sub(start))

	if err != nil || !resp.OK() {
		c.logger.Debug("token verification failed", "status", status, "error", err)
		c.endSession()
		return false
	}

	c.setAuthenticated(true)
	return true
}

func (c *Controller) endSession() {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear session store", "error", err)
	}
	c.setAuthenticated(false)
}

func (c *Controller) setAuthenticated(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = v
}

// =============================================================================
// LOGIN
// =============================================================================

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Session store.Session
	Message string
}

type loginData struct {
	Token string `json:"token"`
}

// Login posts credentials. On success the decoded session is stored and the
// controller becomes authenticated.
func (c *Controller) Login(ctx context.Context, email, password string) (*LoginResult, bool) {
	var result *LoginResult

	req := transport.Request{
		Method: "POST",
		Path:   pathLogin,
		Body:   map[string]string{"email": email, "password": password},
	}
	ok := c.perform(ctx, OpLogin, req, func(resp *transport.Response) error {
		var data loginData
		if err := resp.DecodeData(&data); err != nil {
			return err
		}
		claims, err := c.codec.Decode(data.Token)
		if err != nil {
			return err
		}
		sess := store.Session{
			Token:     data.Token,
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
		}
		if err := store.SaveSession(c.store, sess); err != nil {
			return err
		}
		c.setAuthenticated(true)
		result = &LoginResult{Session: sess, Message: resp.Message}
		return nil
	})
	if !ok {
		return nil, false
	}
	return result, true
}
