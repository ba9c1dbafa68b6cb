// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// =============================================================================
// STORE CONTRACT
// =============================================================================

// Store is a string key-value store scoped to one login session.
// Access is not atomic across keys.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear() error
}

// ErrCorruptSession indicates the stored session record could not be decoded.
var ErrCorruptSession = errors.New("corrupt session record")

// =============================================================================
// SESSION RECORD
// =============================================================================

// SessionKey is the key the session record is stored under.
const SessionKey = "user"

// Session is the authenticated user's token and profile.
type Session struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns "First Last", falling back to the email.
func (s Session) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Email
	}
}

// LoadSession reads the session record. ok is false when none is stored.
func LoadSession(s Store) (Session, bool, error) {
	raw, ok, err := s.Get(SessionKey)
	if err != nil || !ok {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, false, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	return sess, true, nil
}

// SaveSession writes the session record.
func SaveSession(s Store, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.Set(SessionKey, string(data))
}

// Token returns the stored bearer token, or "" when there is none.
func Token(s Store) string {
	sess, ok, err := LoadSession(s)
	if err != nil || !ok {
		return ""
	}
	return sess.Token
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value for key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Clear removes every key.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
