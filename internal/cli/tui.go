// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Interactive mode: the bubbletea program plus the optional
// metrics server and config watcher, run as one errgroup.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/accountctl/internal/account"
	"github.com/jeranaias/accountctl/internal/config"
	"github.com/jeranaias/accountctl/internal/ui/app"
	"github.com/jeranaias/accountctl/internal/ui/styles"
)

const metricsShutdownTimeout = 5 * time.Second

// runTUI runs the interactive client until the user quits or a companion
// service fails.
func (a *App) runTUI(ctx context.Context) error {
	logDir := ""
	if dir, err := config.ConfigDir(); err == nil {
		logDir = filepath.Join(dir, "logs")
	}
	restore := a.redirectLogs(logDir)
	defer restore()

	if err := a.connect(); err != nil {
		return err
	}
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	timings := make(chan account.Timings, 1)
	model := app.New(a.ctrl,
		app.WithContext(gctx),
		app.WithTheme(styles.NewTheme()),
		app.WithTimingUpdates(timings),
		app.WithLogger(a.logger),
	)
	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(gctx),
		tea.WithInput(a.In),
		tea.WithOutput(a.Out),
	)

	g.Go(func() error {
		// Quitting the TUI stops the companions.
		defer cancel()
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})

	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := newMetricsServer(addr, a.registry)
		g.Go(func() error {
			a.logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if a.cfgFile != "" {
		g.Go(func() error {
			return config.Watch(gctx, a.cfgFile, func(cfg *config.Config) {
				a.logger.Info("config reloaded", "path", a.cfgFile)
				offerTimings(timings, timingsFrom(cfg))
			}, config.WithWatchLogger(a.logger))
		})
	}

	return g.Wait()
}

// redirectLogs sends log output to dir/accountctl.log while the TUI owns the
// terminal, since anything written to stderr would tear the alt screen. When
// the file cannot be opened, logs are dropped. The returned func restores
// the previous logger.
func (a *App) redirectLogs(dir string) func() {
	prev := a.logger
	var w io.Writer = io.Discard
	var f *os.File
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err == nil {
			f, _ = os.OpenFile(filepath.Join(dir, "accountctl.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		}
	}
	if f != nil {
		w = f
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: a.cfg.SlogLevel()}))
	return func() {
		a.logger = prev
		if f != nil {
			f.Close()
		}
	}
}

// offerTimings replaces any undelivered update with t.
func offerTimings(ch chan account.Timings, t account.Timings) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- t:
	default:
	}
}

// newMetricsServer serves the registry on GET /metrics.
func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
