// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Per-invocation state: configuration, logger, session store and
// the account controller.

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/config"
	"github.com/jeranaias/accountctl/internal/store"
	"github.com/jeranaias/accountctl/internal/transport"
)

// App carries the streams and state of one accountctl invocation.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Global flags.
	configPath  string
	baseURL     string
	logLevel    string
	metricsAddr string
	jsonOutput  bool

	cfg *config.Config
	// cfgFile is the file cfg came from, empty when running on defaults.
	cfgFile  string
	logger   *slog.Logger
	store    store.Store
	closeFn  func() error
	ctrl     *account.Controller
	registry *prometheus.Registry
}

// NewApp creates an App on the given streams.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{In: in, Out: out, Err: errOut, logger: slog.New(slog.NewTextHandler(errOut, nil))}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig reads the config file, applies flag overrides and configures
// the logger. It runs before every command.
func (a *App) loadConfig() error {
	path := a.configPath
	if path == "" {
		found, err := existingConfigPath()
		if err != nil {
			return &ConfigError{Action: "load", Err: err}
		}
		path = found
	}

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return &ConfigError{Action: "load", Err: err}
	}

	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.metricsAddr != "" {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Action: "validate", Err: err}
	}

	a.cfg = cfg
	a.cfgFile = path
	a.logger = slog.New(slog.NewTextHandler(a.Err, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// existingConfigPath returns the first candidate config file that exists.
func existingConfigPath() (string, error) {
	paths, err := config.CandidatePaths()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if _, statErr := os.Stat(p); statErr == nil {
			return p, nil
		}
	}
	return "", nil
}

// timingsFrom converts the timer settings in cfg for the controller.
func timingsFrom(cfg *config.Config) account.Timings {
	return account.Timings{
		AlertLifetime:   cfg.AlertLifetime(),
		CooldownSeconds: cfg.Cooldown.Seconds,
		OutcomeDecay:    cfg.OutcomeDecay(),
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// connect opens the session store and builds the controller against the
// configured API.
func (a *App) connect() error {
	st, closeFn, err := openStore(a.cfg)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	ctrl, err := account.Connect(a.cfg.API.BaseURL, st,
		[]transport.Option{
			transport.WithTimeout(a.cfg.Timeout()),
			transport.WithRateLimit(a.cfg.API.RequestsPerSecond, a.cfg.API.Burst),
			transport.WithLogger(a.logger),
		},
		account.WithTimings(timingsFrom(a.cfg)),
		account.WithLogger(a.logger),
		account.WithMetrics(account.NewMetrics(a.registry)),
	)
	if err != nil {
		_ = closeFn()
		return &ConfigError{Action: "connect", Err: err}
	}

	a.store = st
	a.closeFn = closeFn
	a.ctrl = ctrl
	a.logger.Debug("controller ready",
		"base_url", a.cfg.API.BaseURL, "backend", a.cfg.Session.Backend, "authenticated", ctrl.IsAuthenticated())
	return nil
}

// close stops the controller's timers and closes the store.
func (a *App) close() {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			a.logger.Warn("failed to close session store", "error", err)
		}
	}
}

// openStore selects the session backend named in cfg.
func openStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return store.NewMemory(), func() error { return nil }, nil
	case config.BackendSQLite:
		path := cfg.Session.Path
		if path == "" {
			path = store.DefaultPath()
		}
		db, err := store.OpenSQLite(path,
			store.WithPassphrase(os.Getenv(config.EnvSessionKey)),
			store.WithOwner(store.ShellOwner()),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, &ConfigError{Action: "load", Err: fmt.Errorf("unknown session backend %q", cfg.Session.Backend)}
	}
}
