package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ftsBM25Weights are the per-column weight arguments passed to the bm25()
// ranking function, in the same order as the symbols_fts column list:
// name, qualified_name, signature, documentation, file_path.
const ftsBM25Weights = "10.0, 8.0, 5.0, 3.0, 1.0"

// createSearchTables creates the FTS5 index over symbol text and the
// content table backing it. Rows in symbols_fts_content are written in
// the same transaction as their nodes (see ApplyFileBatch), and the
// triggers keep the virtual table in lockstep with the content table, so
// the name-search index is never stale relative to node content.
func createSearchTables(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS symbols_fts_content (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			qualified_name TEXT,
			kind TEXT,
			documentation TEXT,
			signature TEXT,
			file_path TEXT,
			language TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_fts_content_file ON symbols_fts_content(file_path)`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
			name,
			qualified_name,
			signature,
			documentation,
			file_path,
			content='symbols_fts_content',
			content_rowid='rowid'
		)`,

		`CREATE TRIGGER IF NOT EXISTS symbols_fts_ai AFTER INSERT ON symbols_fts_content BEGIN
			INSERT INTO symbols_fts(rowid, name, qualified_name, signature, documentation, file_path)
			VALUES (new.rowid, new.name, new.qualified_name, new.signature, new.documentation, new.file_path);
		END`,
		`CREATE TRIGGER IF NOT EXISTS symbols_fts_au AFTER UPDATE ON symbols_fts_content BEGIN
			INSERT INTO symbols_fts(symbols_fts, rowid, name, qualified_name, signature, documentation, file_path)
			VALUES ('delete', old.rowid, old.name, old.qualified_name, old.signature, old.documentation, old.file_path);
			INSERT INTO symbols_fts(rowid, name, qualified_name, signature, documentation, file_path)
			VALUES (new.rowid, new.name, new.qualified_name, new.signature, new.documentation, new.file_path);
		END`,
		`CREATE TRIGGER IF NOT EXISTS symbols_fts_ad AFTER DELETE ON symbols_fts_content BEGIN
			INSERT INTO symbols_fts(symbols_fts, rowid, name, qualified_name, signature, documentation, file_path)
			VALUES ('delete', old.rowid, old.name, old.qualified_name, old.signature, old.documentation, old.file_path);
		END`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create search tables: %w", err)
		}
	}
	return nil
}

// FTSManager runs keyword queries against the symbols_fts index.
type FTSManager struct {
	db *sql.DB
}

// NewFTSManager creates a search manager over db's connection pool.
func NewFTSManager(db *sql.DB) *FTSManager {
	return &FTSManager{db: db}
}

// FTSSearchResult is one keyword hit, ranked by BM25 with the engine's
// column weights.
type FTSSearchResult struct {
	ID            string
	Name          string
	QualifiedName string
	Kind          string
	Documentation string
	Signature     string
	FilePath      string
	Language      string
	Rank          float64 // BM25 score; lower is better in SQLite's convention
	MatchType     string  // "exact", "prefix", "substring", or "expanded" (MatchQuery)
}

// Search runs the fast single-term ladder: exact phrase, then prefix,
// then a LIKE substring fallback, deduplicated in that order. Results
// within the exact and prefix rungs are ordered by BM25 then id, and the
// substring rung by name length then id, so the full ranking is
// deterministic for a given index state.
func (m *FTSManager) Search(ctx context.Context, query string, limit int) ([]FTSSearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var results []FTSSearchResult
	seen := make(map[string]bool)
	add := func(batch []FTSSearchResult) {
		for _, r := range batch {
			if !seen[r.ID] {
				seen[r.ID] = true
				results = append(results, r)
			}
		}
	}

	exact, err := m.matchRows(ctx, fmt.Sprintf(`"%s"`, escapeFTS5Query(query)), "exact", limit)
	if err == nil {
		add(exact)
	}
	if len(results) < limit {
		prefix, err := m.matchRows(ctx, escapeFTS5Query(query)+"*", "prefix", limit-len(results))
		if err == nil {
			add(prefix)
		}
	}
	if len(results) < limit {
		like, err := m.likeRows(ctx, query, limit-len(results))
		if err == nil {
			add(like)
		}
	}
	return results, nil
}

// MatchQuery runs a caller-built FTS5 match expression (the expanded
// multi-term form produced by the query expander) in one pass.
func (m *FTSManager) MatchQuery(ctx context.Context, matchExpr string, limit int) ([]FTSSearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	return m.matchRows(ctx, matchExpr, "expanded", limit)
}

func (m *FTSManager) matchRows(ctx context.Context, matchExpr, matchType string, limit int) ([]FTSSearchResult, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.name, c.qualified_name, c.kind, c.documentation, c.signature, c.file_path, c.language,
		       bm25(symbols_fts, %s) AS rank
		FROM symbols_fts f
		JOIN symbols_fts_content c ON f.rowid = c.rowid
		WHERE symbols_fts MATCH ?
		ORDER BY rank, c.id
		LIMIT ?
	`, ftsBM25Weights), matchExpr, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFTSRows(rows, matchType, true)
}

func (m *FTSManager) likeRows(ctx context.Context, query string, limit int) ([]FTSSearchResult, error) {
	pattern := "%" + query + "%"
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, qualified_name, kind, documentation, signature, file_path, language
		FROM symbols_fts_content
		WHERE name LIKE ? OR qualified_name LIKE ? OR signature LIKE ? OR documentation LIKE ?
		ORDER BY length(name), id
		LIMIT ?
	`, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFTSRows(rows, "substring", false)
}

func scanFTSRows(rows *sql.Rows, matchType string, hasRank bool) ([]FTSSearchResult, error) {
	var results []FTSSearchResult
	for rows.Next() {
		var r FTSSearchResult
		var qualifiedName, kind, doc, sig, filePath, language sql.NullString
		var err error
		if hasRank {
			err = rows.Scan(&r.ID, &r.Name, &qualifiedName, &kind, &doc, &sig, &filePath, &language, &r.Rank)
		} else {
			err = rows.Scan(&r.ID, &r.Name, &qualifiedName, &kind, &doc, &sig, &filePath, &language)
		}
		if err != nil {
			return nil, err
		}
		r.QualifiedName = qualifiedName.String
		r.Kind = kind.String
		r.Documentation = doc.String
		r.Signature = sig.String
		r.FilePath = filePath.String
		r.Language = language.String
		r.MatchType = matchType
		results = append(results, r)
	}
	return results, rows.Err()
}

// IndexedSymbolCount reports how many symbols the search index holds.
func (m *FTSManager) IndexedSymbolCount(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols_fts_content`).Scan(&count)
	return count, err
}

// Optimize merges the FTS index's internal b-trees; worth running after
// a large initial index, pointless after incremental passes.
func (m *FTSManager) Optimize(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `INSERT INTO symbols_fts(symbols_fts) VALUES('optimize')`)
	return err
}

// escapeFTS5Query escapes characters FTS5 treats as syntax.
func escapeFTS5Query(query string) string {
	return strings.NewReplacer(
		`"`, `""`,
		`*`, ``,
		`(`, ` `,
		`)`, ` `,
	).Replace(query)
}
