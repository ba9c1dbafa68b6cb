// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/accountctl/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete accountctl configuration.
type Config struct {
	API      APIConfig      `toml:"api" json:"api" yaml:"api"`
	Alerts   AlertsConfig   `toml:"alerts" json:"alerts" yaml:"alerts"`
	Cooldown CooldownConfig `toml:"cooldown" json:"cooldown" yaml:"cooldown"`
	Outcome  OutcomeConfig  `toml:"outcome" json:"outcome" yaml:"outcome"`
	Session  SessionConfig  `toml:"session" json:"session" yaml:"session"`
	Log      LogConfig      `toml:"log" json:"log" yaml:"log"`
	Metrics  MetricsConfig  `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// APIConfig describes the account service endpoint.
type APIConfig struct {
	// BaseURL is the API root; operation paths are joined onto it.
	BaseURL     string `toml:"base_url" json:"base_url" yaml:"base_url" validate:"required,url,startswith=http"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs" validate:"gte=1,lte=300"`
	// RequestsPerSecond of 0 disables the client-side limiter.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `toml:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// AlertsConfig controls notification lifetime.
type AlertsConfig struct {
	LifetimeMS int `toml:"lifetime_ms" json:"lifetime_ms" yaml:"lifetime_ms" validate:"gte=500,lte=600000"`
}

// CooldownConfig controls the recovery-code resend countdown.
type CooldownConfig struct {
	Seconds int `toml:"seconds" json:"seconds" yaml:"seconds" validate:"gte=0,lte=600"`
}

// OutcomeConfig controls how long the last operation outcome stays visible.
type OutcomeConfig struct {
	DecayMS int `toml:"decay_ms" json:"decay_ms" yaml:"decay_ms" validate:"gte=100,lte=600000"`
}

// SessionConfig selects where the session record lives.
type SessionConfig struct {
	Backend string `toml:"backend" json:"backend" yaml:"backend" validate:"oneof=memory sqlite"`
	// Path is the SQLite file. Empty uses a per-terminal file in the runtime dir.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LogConfig sets the stderr log level.
type LogConfig struct {
	Level string `toml:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig enables the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr" json:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
}

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:3000/api/v1/",
			TimeoutSecs:       15,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Alerts:   AlertsConfig{LifetimeMS: 5000},
		Cooldown: CooldownConfig{Seconds: 3},
		Outcome:  OutcomeConfig{DecayMS: 5000},
		Session:  SessionConfig{Backend: BackendSQLite},
		Log:      LogConfig{Level: "info"},
	}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// AlertLifetime returns how long an alert stays queued.
func (c *Config) AlertLifetime() time.Duration {
	return time.Duration(c.Alerts.LifetimeMS) * time.Millisecond
}

// OutcomeDecay returns how long an outcome stays visible.
func (c *Config) OutcomeDecay() time.Duration {
	return time.Duration(c.Outcome.DecayMS) * time.Millisecond
}

// SlogLevel maps Log.Level to a slog level. Unknown values are info.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns ~/.accountctl.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".accountctl"), nil
}

// CandidatePaths returns the config files Load tries, in order.
func CandidatePaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}, nil
}

// DefaultPath returns the TOML file Save writes.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the first config file that exists, applies environment
// overrides and validates. With no file it returns the defaults.
func Load() (*Config, error) {
	paths, err := CandidatePaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads path, choosing the decoder by extension. Missing keys
// keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.Decode(string(data), cfg)
		return err
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML file.
func Save(cfg *Config) error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes cfg atomically with 0600 permissions, choosing the
// encoder by extension.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		buf.Write(data)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		enc.Close()
	default:
		fmt.Fprintln(&buf, "# accountctl configuration file")
		fmt.Fprintln(&buf, "")
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is every invalid field found.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their file key, e.g. "api.base_url".
	v.RegisterTagNameFunc(tagName)
	return v
}

// Validate checks every field and returns ValidateErrors when any is invalid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidateErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   fieldKey(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return errs
}

// fieldKey drops the root type from a validator namespace.
func fieldKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "startswith":
		return "must be an http(s) URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "hostname_port":
		return "must be host:port"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// =============================================================================
// ENVIRONMENT VARIABLE OVERRIDES
// =============================================================================

// Environment variables read by ApplyEnvOverrides and the CLI.
const (
	EnvBaseURL        = "ACCOUNTCTL_BASE_URL"
	EnvLogLevel       = "ACCOUNTCTL_LOG_LEVEL"
	EnvSessionBackend = "ACCOUNTCTL_SESSION_BACKEND"
	EnvSessionPath    = "ACCOUNTCTL_SESSION_PATH"
	EnvMetricsAddr    = "ACCOUNTCTL_METRICS_ADDR"
	EnvCooldown       = "ACCOUNTCTL_COOLDOWN_SECONDS"
	// EnvSessionKey holds the SQLite at-rest passphrase. It is never read
	// from or written to a file.
	EnvSessionKey = "ACCOUNTCTL_SESSION_KEY"
)

// ApplyEnvOverrides replaces values set in the environment.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvSessionBackend); v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvSessionPath); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(EnvCooldown); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cooldown.Seconds = n
		}
	}
}
