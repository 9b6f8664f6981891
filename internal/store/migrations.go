package store

import (
	"database/sql"
	"fmt"

	"storyline/internal/logging"
)

// Schema versions:
// v1: client_state key/value table
// v2: updated_at column on client_state
const CurrentSchemaVersion = 2

// migration upgrades the schema from version-1 to version.
type migration struct {
	version     int
	description string
	apply       func(*sql.Tx) error
}

var migrations = []migration{
	{1, "create client_state", func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS client_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
		return err
	}},
	{2, "add client_state.updated_at", func(tx *sql.Tx) error {
		_, err := tx.Exec(`ALTER TABLE client_state ADD COLUMN updated_at DATETIME`)
		return err
	}},
}

// RunMigrations brings the database up to CurrentSchemaVersion.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		description TEXT
	)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	current := GetSchemaVersion(db)
	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration v%d (%s): %w", m.version, m.description, err)
		}
		logging.Store("Migration applied: v%d %s", m.version, m.description)
		applied++
	}

	logging.StoreDebug("Schema migrations complete: applied=%d", applied)
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
		m.version, m.description,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetSchemaVersion returns the highest applied schema version, 0 for a fresh database.
func GetSchemaVersion(db *sql.DB) int {
	var version sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version); err != nil {
		logging.StoreDebug("Schema version lookup failed: %v", err)
		return 0
	}
	return int(version.Int64)
}
