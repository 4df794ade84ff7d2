package storage

import (
	"database/sql"
	"fmt"
)

// Migrations are monotonic: each entry upgrades the schema by one
// version, applied in order at open. A database is never downgraded; an
// engine older than the schema refuses to open rather than guess.
const currentSchemaVersion = 1

// migrate brings the database to currentSchemaVersion.
func (db *DB) migrate() error {
	version, err := db.schemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this engine supports (%d)", version, currentSchemaVersion)
	}
	if version == currentSchemaVersion {
		return nil
	}

	return db.WithTx(func(tx *sql.Tx) error {
		for v := version + 1; v <= currentSchemaVersion; v++ {
			migrateFn, ok := migrations[v]
			if !ok {
				return fmt.Errorf("no migration registered for schema version %d", v)
			}
			if err := migrateFn(tx); err != nil {
				return fmt.Errorf("migrate to version %d: %w", v, err)
			}
		}
		if _, err := tx.Exec(`
			INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))
		`, currentSchemaVersion); err != nil {
			return err
		}
		if db.logger != nil {
			db.logger.Info("schema migrated", map[string]interface{}{
				"from": version, "to": currentSchemaVersion,
			})
		}
		return nil
	})
}

// migrations maps a target version to the migration producing it.
var migrations = map[int]func(*sql.Tx) error{
	1: migrateV1,
}

// migrateV1 creates the initial schema: the graph tables plus the FTS
// index kept consistent with nodes via the same write transaction.
func migrateV1(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return err
	}
	if err := createGraphTables(tx); err != nil {
		return err
	}
	return createSearchTables(tx)
}

// schemaVersion reads the highest applied version; 0 for a new database.
func (db *DB) schemaVersion() (int, error) {
	var name string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'
	`).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
