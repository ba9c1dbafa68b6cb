// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI, the TUI and the
// config layer.
//
// # Key Functions
//
//   - CleanInput: NFKC normalisation and trimming of typed form values
//   - TruncateWidth, StringWidth: display-width aware text fitting
//   - MaskEmail: log-safe rendering of an email address
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	email := util.CleanInput(input.Value())
//	line := util.TruncateWidth(alert.Message, width-4)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
