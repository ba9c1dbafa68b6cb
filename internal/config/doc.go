// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves accountctl configuration.
//
// TOML, JSON and YAML files are accepted. Values are validated with struct
// tags and can be overridden from the environment.
//
// # Configuration Precedence
//
//   - Environment variables (ACCOUNTCTL_*)
//   - ~/.accountctl/config.toml
//   - ~/.accountctl/config.json
//   - ~/.accountctl/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client, err := transport.New(cfg.API.BaseURL, transport.WithTimeout(cfg.Timeout()))
//
// Watch re-reads a file when it changes so a running TUI can pick up new
// timings without a restart.
package config
