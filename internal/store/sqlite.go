// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	// OWASP 2023 recommendation for PBKDF2-HMAC-SHA256.
	pbkdf2Iterations = 600000
	keySize          = 32
	saltSize         = 32
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	name  TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// ErrDecrypt indicates a stored value could not be decrypted, usually because
// the passphrase changed.
var ErrDecrypt = errors.New("failed to decrypt session value")

// SQLite is a file-backed Store.
type SQLite struct {
	db   *sql.DB
	path string
	aead cipher.AEAD
}

// SQLiteOption configures OpenSQLite.
type SQLiteOption func(*sqliteOptions)

type sqliteOptions struct {
	passphrase string
	owner      string
}

// WithPassphrase encrypts values at rest with a key derived from passphrase.
func WithPassphrase(passphrase string) SQLiteOption {
	return func(o *sqliteOptions) { o.passphrase = passphrase }
}

// WithOwner stamps the database with the identity of the session that opened
// it. Opening a database stamped by a different owner discards every stored
// value before the new stamp is written.
func WithOwner(owner string) SQLiteOption {
	return func(o *sqliteOptions) { o.owner = owner }
}

// DefaultPath returns the per-shell session database path:
// <XDG_RUNTIME_DIR or temp dir>/accountctl/session-<parent pid>.db
func DefaultPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "accountctl", "session-"+strconv.Itoa(os.Getppid())+".db")
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	var o sqliteOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	// Owner-only; the file holds a bearer token.
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to restrict session file permissions: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if o.owner != "" {
		if err := s.claim(o.owner); err != nil {
			db.Close()
			return nil, err
		}
	}
	if o.passphrase != "" {
		aead, err := s.deriveCipher(o.passphrase)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.aead = aead
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *SQLite) Get(key string) (string, bool, error) {
	var raw []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key %q: %w", key, err)
	}
	plain, err := s.open(raw)
	if err != nil {
		return "", false, err
	}
	return string(plain), true, nil
}

// Set stores value under key.
func (s *SQLite) Set(key, value string) error {
	sealed, err := s.seal([]byte(value))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, sealed,
	)
	if err != nil {
		return fmt.Errorf("failed to write session key %q: %w", key, err)
	}
	return nil
}

// Clear removes every key. The encryption salt is kept.
func (s *SQLite) Clear() error {
	if _, err := s.db.Exec("DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Destroy closes the database and deletes its files.
func (s *SQLite) Destroy() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm", s.path + "-journal"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// claim drops values left behind by an earlier owner, including databases
// written before any owner was recorded, then records owner.
func (s *SQLite) claim(owner string) error {
	var prev string
	err := s.db.QueryRow("SELECT value FROM meta WHERE name = 'owner'").Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read session owner: %w", err)
	}
	if prev == owner {
		return nil
	}
	if _, err := s.db.Exec("DELETE FROM kv"); err != nil {
		return fmt.Errorf("failed to discard stale session: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO meta (name, value) VALUES ('owner', ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		owner,
	)
	if err != nil {
		return fmt.Errorf("failed to record session owner: %w", err)
	}
	return nil
}

// =============================================================================
// AT-REST ENCRYPTION
// =============================================================================

func (s *SQLite) deriveCipher(passphrase string) (cipher.AEAD, error) {
	var salt []byte
	err := s.db.QueryRow("SELECT value FROM meta WHERE name = 'salt'").Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO meta (name, value) VALUES ('salt', ?)", salt); err != nil {
			return nil, fmt.Errorf("failed to store salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func (s *SQLite) seal(plain []byte) ([]byte, error) {
	if s.aead == nil {
		return plain, nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *SQLite) open(raw []byte) ([]byte, error) {
	if s.aead == nil {
		return raw, nil
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return nil, ErrDecrypt
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
