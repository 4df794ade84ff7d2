// Package storage is the engine's durable store: one SQLite database per
// indexed project holding the symbol graph, the full-text index, and the
// embedding cache. One writer, many readers; statements run through DB's
// Exec/Query/QueryRow are prepared once and cached; schema migrations are
// monotonic and applied at open.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	"github.com/suatkocar/codegraph/internal/logging"
)

// StateDirName is the per-project directory everything durable lives in.
const StateDirName = ".codegraph"

// dbFileName is the relational database file inside StateDirName.
const dbFileName = "codegraph.db"

// DB wraps the SQLite connection with the transaction helper and the
// prepared-statement cache the rest of the engine goes through.
type DB struct {
	conn   *sql.DB
	stmts  *statementCache
	logger *logging.Logger
	dbPath string
}

// Open opens (creating if needed) the project database under
// repoRoot/.codegraph/ and brings its schema current.
func Open(repoRoot string, logger *logging.Logger) (*DB, error) {
	stateDir := filepath.Join(repoRoot, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFileName)
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL gives concurrent readers against the single writer;
	// busy_timeout absorbs short write contention instead of erroring.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		stmts:  newStatementCache(conn),
		logger: logger,
		dbPath: dbPath,
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// Close releases the statement cache and the connection.
func (db *DB) Close() error {
	if db.stmts != nil {
		db.stmts.close()
	}
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn exposes the underlying pool for callers that manage their own
// statements (the FTS manager, tests).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file's location on disk.
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
// A batch that fails leaves the store at the outcome of the previous
// successful batches, never partially applied.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && db.logger != nil {
			db.logger.Error("rollback failed", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Exec runs a write statement through the prepared-statement cache.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	stmt, err := db.stmts.get(query)
	if err != nil {
		return nil, err
	}
	return stmt.Exec(args...)
}

// Query runs a read through the prepared-statement cache.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	stmt, err := db.stmts.get(query)
	if err != nil {
		return nil, err
	}
	return stmt.Query(args...)
}

// QueryRow runs a single-row read through the prepared-statement cache.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	stmt, err := db.stmts.get(query)
	if err != nil {
		// Surface the prepare error through the row scan.
		return db.conn.QueryRow(query, args...)
	}
	return stmt.QueryRow(args...)
}
