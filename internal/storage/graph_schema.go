package storage

import "database/sql"

// createGraphTables creates the canonical symbol-graph tables: nodes, edges,
// file_hashes, unresolved_refs, and embedding_cache. These hold the Node/Edge
// data model the indexing pipeline and retrieval/traversal engines operate
// on; symbols_fts (see fts.go) is kept consistent with nodes via the same
// write transaction rather than a background sync.
func createGraphTables(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS file_hashes (
			path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			language TEXT NOT NULL,
			symbol_count INTEGER NOT NULL DEFAULT 0,
			parse_error_summary TEXT,
			last_indexed_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL REFERENCES file_hashes(path) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			qualified_name TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			start_byte INTEGER NOT NULL DEFAULT 0,
			end_byte INTEGER NOT NULL DEFAULT 0,
			signature TEXT,
			documentation TEXT,
			language TEXT NOT NULL,
			exported INTEGER NOT NULL DEFAULT 0,
			is_test INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_qualified_name ON nodes(qualified_name)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_fingerprint ON nodes(fingerprint)`,

		`CREATE TABLE IF NOT EXISTS edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			target_node_id TEXT REFERENCES nodes(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			call_site_line INTEGER NOT NULL DEFAULT 0,
			call_site_byte INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_node_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_node_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind)`,

		`CREATE TABLE IF NOT EXISTS unresolved_refs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			textual_target TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'calls',
			scope_context TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_unresolved_refs_source ON unresolved_refs(source_node_id)`,

		`CREATE TABLE IF NOT EXISTS embedding_cache (
			fingerprint TEXT PRIMARY KEY,
			dim INTEGER NOT NULL,
			vector BLOB NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
