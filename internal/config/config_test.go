// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvLogLevel, EnvSessionBackend, EnvSessionPath, EnvMetricsAddr, EnvCooldown} {
		t.Setenv(key, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.AlertLifetime())
	assert.Equal(t, 5*time.Second, cfg.OutcomeDecay())
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, 3, cfg.Cooldown.Seconds)
}

func TestLoadFromPath_Formats(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	files := map[string]string{
		"config.toml": "[api]\nbase_url = \"https://accounts.example.com/api/\"\n[cooldown]\nseconds = 10\n",
		"config.json": `{"api":{"base_url":"https://accounts.example.com/api/"},"cooldown":{"seconds":10}}`,
		"config.yaml": "api:\n  base_url: https://accounts.example.com/api/\ncooldown:\n  seconds: 10\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, "https://accounts.example.com/api/", cfg.API.BaseURL)
			assert.Equal(t, 10, cfg.Cooldown.Seconds)
			assert.Equal(t, 5000, cfg.Alerts.LifetimeMS, "unset keys keep defaults")
		})
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://override.local/")
	t.Setenv(EnvSessionBackend, "MEMORY")
	t.Setenv(EnvCooldown, "7")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"https://file.example.com/\"\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override.local/", cfg.API.BaseURL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 7, cfg.Cooldown.Seconds)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[api]\nbase_url = \"ftp://nope\"\n[session]\nbackend = \"redis\"\n[log]\nlevel = \"loud\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"api.base_url", "session.backend", "log.level"}, fields)
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadFromPath(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg := Default()
	cfg.Session.Backend = BackendMemory
	cfg.Metrics.Addr = "127.0.0.1:9464"

	for _, name := range []string{"out.toml", "out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveToPath(cfg, path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		if os.PathSeparator == '/' {
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		}

		loaded, err := LoadFromPath(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api/v1/", v)

	require.NoError(t, cfg.Set("cooldown.seconds", "9"))
	assert.Equal(t, 9, cfg.Cooldown.Seconds)

	require.NoError(t, cfg.Set("api.requests_per_second", "2.5"))
	assert.Equal(t, 2.5, cfg.API.RequestsPerSecond)

	require.NoError(t, cfg.Set("log.level", "debug"))
	assert.Equal(t, "debug", cfg.Log.Level)

	assert.Error(t, cfg.Set("cooldown.seconds", "many"))
	assert.Error(t, cfg.Set("api", "x"))
	_, err = cfg.Get("api.nope")
	assert.ErrorContains(t, err, "unknown key: api.nope")
	_, err = cfg.Get("api.base_url.more")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "session.backend")
	assert.Contains(t, keys, "metrics.addr")
	assert.IsIncreasing(t, keys)

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changes <- c }, withDebounce(20*time.Millisecond))
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	bad := []byte("[cooldown]\nseconds = -1\n")
	require.NoError(t, os.WriteFile(path, bad, 0600))
	time.Sleep(100 * time.Millisecond)

	updated := Default()
	updated.Cooldown.Seconds = 42
	require.NoError(t, SaveToPath(updated, path))

	timeout := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case c := <-changes:
			require.NoError(t, c.Validate(), "only valid configs are delivered")
			seen = c.Cooldown.Seconds == 42
		case <-timeout:
			t.Fatal("no reload observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
