// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker records which remote operation is in flight and the outcome
// of the last completed one.
//
// The active operation name is informational only. Begin overwrites whatever
// was there, so two concurrent operations show the most recently started one.
// It is not a lock.
//
// The last outcome (status code and message) decays back to neutral after a
// configurable window. Only one decay timer is armed at a time.
//
// The package also holds the status interpretation table shared by every
// account operation (see Interpret).
package tracker
