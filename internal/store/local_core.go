package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"storyline/internal/logging"

	_ "modernc.org/sqlite"
)

// LocalStore persists client-side key/value state in SQLite.
// It backs the session (token, userId, userName) and small pieces of
// client state such as the last push subscription endpoint.
//
// Multi-key writes run in a single transaction so readers never observe
// a partially written group of keys.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore initializes the SQLite database at the given path.
// ":memory:" opens a private in-memory database.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	logging.Store("Initializing LocalStore at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}

	s := &LocalStore{db: db, dbPath: path}
	if err := RunMigrations(db); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}

	logging.Store("LocalStore ready (schema v%d)", GetSchemaVersion(db))
	return s, nil
}

// Path returns the database path.
func (s *LocalStore) Path() string { return s.dbPath }

// Close closes the database.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Values returns the stored values for keys. Missing keys are absent from the map.
func (s *LocalStore) Values(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.Query("SELECT key, value FROM client_state WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read client state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan client state: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SetValues writes all values in one transaction.
func (s *LocalStore) SetValues(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	logging.StoreDebug("Writing client state keys: %v", keys)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		_, err := tx.Exec(
			`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			k, values[k],
		)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// DeleteValues removes keys in one transaction. Missing keys are ignored.
func (s *LocalStore) DeleteValues(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Deleting client state keys: %v", keys)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.Exec("DELETE FROM client_state WHERE key = ?", k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	return tx.Commit()
}
