// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the session key-value store and the session record
// kept in it.
//
// Two backends are available:
//
//   - Memory: lives as long as the process. Used by the TUI when nothing
//     needs to outlive it, and by tests.
//   - SQLite: a per-shell database under the runtime directory, so separate
//     CLI invocations from the same shell share a session. Values can be
//     encrypted at rest with a passphrase (AES-256-GCM, PBKDF2-SHA256 key).
//
// Neither backend is meant to persist beyond the login session: the SQLite
// file lives in XDG_RUNTIME_DIR (or the temp dir) and is removed by Destroy.
package store
