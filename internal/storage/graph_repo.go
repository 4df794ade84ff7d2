package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// GraphRepository provides CRUD operations over nodes, edges, file_hashes,
// unresolved_refs, and embedding_cache — the canonical symbol-graph tables
// the indexing pipeline and query/graph/context packages read from.
type GraphRepository struct {
	db *DB
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(db *DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// FileBatch is everything extracted from one file in one indexing pass. It
// is applied atomically: after ApplyFileBatch either every node, edge,
// and unresolved ref in it is live, or none are.
type FileBatch struct {
	File       FileRecordRow
	Nodes      []Node
	Edges      []Edge
	Unresolved []UnresolvedRefRow
}

// ApplyFileBatch replaces all nodes/edges/unresolved-refs for one file in a
// single transaction. Deleting the file's prior nodes cascades (via FK) to
// their edges and unresolved refs, and the file's FTS content rows are
// deleted explicitly, so a changed file never leaves stale rows behind.
func (r *GraphRepository) ApplyFileBatch(batch FileBatch) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		return r.applyFileBatchTx(tx, batch)
	})
}

func (r *GraphRepository) applyFileBatchTx(tx *sql.Tx, batch FileBatch) error {
	// Inbound edges from other files would vanish with this file's old
	// nodes (cascade), silently unlinking unchanged callers. Demote them
	// to unresolved refs first; the resolver's re-attempt pass rebinds
	// them against the replacement nodes by qualified name.
	if err := demoteInboundEdges(tx, batch.File.Path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM nodes WHERE file_path = ?`, batch.File.Path); err != nil {
		return fmt.Errorf("delete prior nodes for %s: %w", batch.File.Path, err)
	}
	if _, err := tx.Exec(`DELETE FROM symbols_fts_content WHERE file_path = ?`, batch.File.Path); err != nil {
		return fmt.Errorf("delete prior search rows for %s: %w", batch.File.Path, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO file_hashes (path, content_hash, language, symbol_count, parse_error_summary, last_indexed_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			language = excluded.language,
			symbol_count = excluded.symbol_count,
			parse_error_summary = excluded.parse_error_summary,
			last_indexed_at = excluded.last_indexed_at
	`, batch.File.Path, batch.File.ContentHash, batch.File.Language, batch.File.SymbolCount, nullableString(batch.File.ParseErrorSummary)); err != nil {
		return fmt.Errorf("upsert file_hashes for %s: %w", batch.File.Path, err)
	}

	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (id, file_path, kind, name, qualified_name, start_line, end_line, start_byte, end_byte, signature, documentation, language, exported, is_test, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO symbols_fts_content (id, name, qualified_name, kind, documentation, signature, file_path, language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, n := range batch.Nodes {
		if _, err := nodeStmt.Exec(n.ID, n.FilePath, string(n.Kind), n.Name, n.QualifiedName, n.StartLine, n.EndLine, n.StartByte, n.EndByte,
			nullableString(n.Signature), nullableString(n.Documentation), n.Language, boolToInt(n.Exported), boolToInt(n.IsTest), n.Fingerprint); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
		if _, err := ftsStmt.Exec(n.ID, n.Name, n.QualifiedName, string(n.Kind), n.Documentation, n.Signature, n.FilePath, n.Language); err != nil {
			return fmt.Errorf("index node %s for search: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.Prepare(`
		INSERT INTO edges (source_node_id, target_node_id, kind, call_site_line, call_site_byte)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range batch.Edges {
		var target interface{}
		if e.TargetNodeID != "" {
			target = e.TargetNodeID
		}
		if _, err := edgeStmt.Exec(e.SourceNodeID, target, string(e.Kind), e.CallSiteLine, e.CallSiteByte); err != nil {
			return fmt.Errorf("insert edge from %s: %w", e.SourceNodeID, err)
		}
	}

	refStmt, err := tx.Prepare(`
		INSERT INTO unresolved_refs (source_node_id, textual_target, kind, scope_context, created_at)
		VALUES (?, ?, ?, ?, datetime('now'))
	`)
	if err != nil {
		return fmt.Errorf("prepare unresolved_ref insert: %w", err)
	}
	defer refStmt.Close()

	for _, u := range batch.Unresolved {
		if _, err := refStmt.Exec(u.SourceNodeID, u.TextualTarget, string(u.Kind), nullableString(u.ScopeContext)); err != nil {
			return fmt.Errorf("insert unresolved ref for %s: %w", u.SourceNodeID, err)
		}
	}

	return nil
}

// DeleteFile removes a FileRecord and, by cascade, every Node defined in it
// and every Edge touching those nodes. No live edge is left with a missing
// endpoint afterward.
func (r *GraphRepository) DeleteFile(path string) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		// Callers in surviving files keep their reference as a diagnostic
		// row rather than losing it with the cascade; re-adding the file
		// later rebinds them.
		if err := demoteInboundEdges(tx, path); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM file_hashes WHERE path = ?`, path); err != nil {
			return fmt.Errorf("delete file_hashes for %s: %w", path, err)
		}
		if _, err := tx.Exec(`DELETE FROM symbols_fts_content WHERE file_path = ?`, path); err != nil {
			return fmt.Errorf("delete search rows for %s: %w", path, err)
		}
		return nil
	})
}

// demoteInboundEdges rewrites edges that arrive at path's nodes from
// other files into unresolved_refs rows keyed by the target's qualified
// name, then drops the edge rows. The textual form is a reconstruction
// (the original call text is gone), which is exactly what the resolver's
// qualified-name lookup consumes.
func demoteInboundEdges(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`
		INSERT INTO unresolved_refs (source_node_id, textual_target, kind, scope_context, created_at)
		SELECT e.source_node_id, tn.qualified_name, e.kind, sn.file_path, datetime('now')
		FROM edges e
		JOIN nodes tn ON tn.id = e.target_node_id
		JOIN nodes sn ON sn.id = e.source_node_id
		WHERE tn.file_path = ? AND sn.file_path != ?
	`, path, path); err != nil {
		return fmt.Errorf("demote inbound edges for %s: %w", path, err)
	}
	if _, err := tx.Exec(`
		DELETE FROM edges WHERE id IN (
			SELECT e.id FROM edges e
			JOIN nodes tn ON tn.id = e.target_node_id
			JOIN nodes sn ON sn.id = e.source_node_id
			WHERE tn.file_path = ? AND sn.file_path != ?
		)
	`, path, path); err != nil {
		return fmt.Errorf("drop demoted edges for %s: %w", path, err)
	}
	return nil
}

// AllFilePaths lists every path currently in the file index, for the
// pipeline's deleted-file pruning.
func (r *GraphRepository) AllFilePaths() ([]string, error) {
	rows, err := r.db.Query(`SELECT path FROM file_hashes ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetFileHash returns the stored content hash for path, or ("", false) if
// the file has never been indexed.
func (r *GraphRepository) GetFileHash(path string) (string, bool, error) {
	var hash string
	err := r.db.QueryRow(`SELECT content_hash FROM file_hashes WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// NodesByFile returns every node currently defined in path, ordered by
// start line for deterministic containment-walk post-processing.
func (r *GraphRepository) NodesByFile(path string) ([]Node, error) {
	rows, err := r.db.Query(`
		SELECT id, file_path, kind, name, qualified_name, start_line, end_line, start_byte, end_byte,
		       COALESCE(signature, ''), COALESCE(documentation, ''), language, exported, is_test, fingerprint
		FROM nodes WHERE file_path = ? ORDER BY start_line ASC
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNodes(rows)
}

// NodeByID returns a single node by its stable id.
func (r *GraphRepository) NodeByID(id string) (*Node, error) {
	row := r.db.QueryRow(`
		SELECT id, file_path, kind, name, qualified_name, start_line, end_line, start_byte, end_byte,
		       COALESCE(signature, ''), COALESCE(documentation, ''), language, exported, is_test, fingerprint
		FROM nodes WHERE id = ?
	`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// AllNodes streams every live node. Used by graph construction, PageRank,
// and dead-code analysis; callers should not assume the full project fits
// in memory for very large trees, but at this engine's target scale
// (single project) it is loaded once per query.
func (r *GraphRepository) AllNodes() ([]Node, error) {
	rows, err := r.db.Query(`
		SELECT id, file_path, kind, name, qualified_name, start_line, end_line, start_byte, end_byte,
		       COALESCE(signature, ''), COALESCE(documentation, ''), language, exported, is_test, fingerprint
		FROM nodes ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNodes(rows)
}

// AllEdges streams every edge, resolved or not (unresolved edges carry a
// NULL target_node_id and TargetNodeID == "").
func (r *GraphRepository) AllEdges() ([]Edge, error) {
	rows, err := r.db.Query(`
		SELECT id, source_node_id, COALESCE(target_node_id, ''), kind, call_site_line, call_site_byte
		FROM edges ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.SourceNodeID, &e.TargetNodeID, &kind, &e.CallSiteLine, &e.CallSiteByte); err != nil {
			return nil, err
		}
		e.Kind = EdgeKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EdgesByKind streams edges of a single kind, the common case for graph
// traversal (calls, imports) and circular-imports (imports only).
func (r *GraphRepository) EdgesByKind(kind EdgeKind) ([]Edge, error) {
	rows, err := r.db.Query(`
		SELECT id, source_node_id, COALESCE(target_node_id, ''), kind, call_site_line, call_site_byte
		FROM edges WHERE kind = ? ORDER BY id
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var k string
		if err := rows.Scan(&e.ID, &e.SourceNodeID, &e.TargetNodeID, &k, &e.CallSiteLine, &e.CallSiteByte); err != nil {
			return nil, err
		}
		e.Kind = EdgeKind(k)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InboundEdgeCount returns how many edges of kind point at target — used by
// dead-code analysis ("no inbound calls/references/tests").
func (r *GraphRepository) InboundEdgeCount(target string, kinds []EdgeKind) (int, error) {
	if len(kinds) == 0 {
		return 0, nil
	}
	placeholders := ""
	args := []interface{}{target}
	for i, k := range kinds {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, string(k))
	}
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM edges WHERE target_node_id = ? AND kind IN (%s)`, placeholders)
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UnresolvedRefsForFile returns unresolved refs whose source node belongs to
// path.
func (r *GraphRepository) UnresolvedRefsForFile(path string) ([]UnresolvedRefRow, error) {
	rows, err := r.db.Query(`
		SELECT ur.id, ur.source_node_id, ur.textual_target, ur.kind, COALESCE(ur.scope_context, ''), ur.created_at
		FROM unresolved_refs ur
		JOIN nodes n ON n.id = ur.source_node_id
		WHERE n.file_path = ?
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUnresolvedRefs(rows)
}

// AllUnresolvedRefs returns every outstanding unresolved ref across the
// repo, for the resolver's re-attempt pass: a ref left over from an
// earlier run may resolve once a later run adds the file that defines
// its target.
func (r *GraphRepository) AllUnresolvedRefs() ([]UnresolvedRefRow, error) {
	rows, err := r.db.Query(`
		SELECT id, source_node_id, textual_target, kind, COALESCE(scope_context, ''), created_at
		FROM unresolved_refs
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUnresolvedRefs(rows)
}

func scanUnresolvedRefs(rows *sql.Rows) ([]UnresolvedRefRow, error) {
	var out []UnresolvedRefRow
	for rows.Next() {
		var u UnresolvedRefRow
		var kind, createdAt string
		if err := rows.Scan(&u.ID, &u.SourceNodeID, &u.TextualTarget, &kind, &u.ScopeContext, &createdAt); err != nil {
			return nil, err
		}
		u.Kind = EdgeKind(kind)
		u.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUnresolvedRefs removes the given unresolved_refs rows by id, used
// when a re-attempt pass is about to recompute their outcome (any that are
// still unresolved afterward are re-inserted fresh by ApplyResolutions).
func (r *GraphRepository) DeleteUnresolvedRefs(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`DELETE FROM unresolved_refs WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range ids {
			if _, err := stmt.Exec(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResolveRef promotes an UnresolvedRef to a real edge and removes the
// diagnostic row, within one transaction.
func (r *GraphRepository) ResolveRef(ref UnresolvedRefRow, targetNodeID string, kind EdgeKind) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO edges (source_node_id, target_node_id, kind, call_site_line, call_site_byte)
			VALUES (?, ?, ?, 0, 0)
		`, ref.SourceNodeID, targetNodeID, string(kind)); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM unresolved_refs WHERE id = ?`, ref.ID)
		return err
	})
}

// ApplyResolutions persists the resolver's second-pass output in one
// transaction: resolved edges (calls/imports whose targets were only
// knowable once the whole repo's nodes existed) and the unresolved refs
// left over, without touching any node row. Unlike ApplyFileBatch, this
// never deletes by file path, since a resolution batch spans every file in
// the pass.
func (r *GraphRepository) ApplyResolutions(edges []Edge, unresolved []UnresolvedRefRow) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		edgeStmt, err := tx.Prepare(`
			INSERT INTO edges (source_node_id, target_node_id, kind, call_site_line, call_site_byte)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare edge insert: %w", err)
		}
		defer edgeStmt.Close()

		for _, e := range edges {
			if _, err := edgeStmt.Exec(e.SourceNodeID, e.TargetNodeID, string(e.Kind), e.CallSiteLine, e.CallSiteByte); err != nil {
				return fmt.Errorf("insert resolved edge from %s: %w", e.SourceNodeID, err)
			}
		}

		refStmt, err := tx.Prepare(`
			INSERT INTO unresolved_refs (source_node_id, textual_target, kind, scope_context, created_at)
			VALUES (?, ?, ?, ?, datetime('now'))
		`)
		if err != nil {
			return fmt.Errorf("prepare unresolved_ref insert: %w", err)
		}
		defer refStmt.Close()

		for _, u := range unresolved {
			if _, err := refStmt.Exec(u.SourceNodeID, u.TextualTarget, string(u.Kind), nullableString(u.ScopeContext)); err != nil {
				return fmt.Errorf("insert unresolved ref for %s: %w", u.SourceNodeID, err)
			}
		}
		return nil
	})
}

// GetEmbedding returns a cached vector for fingerprint, if present.
func (r *GraphRepository) GetEmbedding(fingerprint string) (*EmbeddingCacheEntry, error) {
	var dim int
	var blob []byte
	var createdAt string
	err := r.db.QueryRow(`SELECT dim, vector, created_at FROM embedding_cache WHERE fingerprint = ?`, fingerprint).
		Scan(&dim, &blob, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vec := bytesToFloat32(blob)
	t, _ := time.Parse("2006-01-02 15:04:05", createdAt)
	return &EmbeddingCacheEntry{Fingerprint: fingerprint, Dim: dim, Vector: vec, CreatedAt: t}, nil
}

// PutEmbedding caches a vector for fingerprint, replacing any prior entry.
func (r *GraphRepository) PutEmbedding(fingerprint string, vector []float32) error {
	_, err := r.db.Exec(`
		INSERT INTO embedding_cache (fingerprint, dim, vector, created_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(fingerprint) DO UPDATE SET dim = excluded.dim, vector = excluded.vector
	`, fingerprint, len(vector), float32ToBytes(vector))
	return err
}

// AllEmbeddings returns every cached embedding, for the brute-force kNN
// scan (no ANN index ships with the pure-Go sqlite driver, acceptable
// at single-project scale).
func (r *GraphRepository) AllEmbeddings() ([]EmbeddingCacheEntry, error) {
	rows, err := r.db.Query(`SELECT fingerprint, dim, vector, created_at FROM embedding_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmbeddingCacheEntry
	for rows.Next() {
		var e EmbeddingCacheEntry
		var blob []byte
		var createdAt string
		if err := rows.Scan(&e.Fingerprint, &e.Dim, &blob, &createdAt); err != nil {
			return nil, err
		}
		e.Vector = bytesToFloat32(blob)
		e.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanNodes(rows *sql.Rows) ([]Node, error) {
	var out []Node
	for rows.Next() {
		var n Node
		var kind string
		var exported, isTest int
		if err := rows.Scan(&n.ID, &n.FilePath, &kind, &n.Name, &n.QualifiedName, &n.StartLine, &n.EndLine,
			&n.StartByte, &n.EndByte, &n.Signature, &n.Documentation, &n.Language, &exported, &isTest, &n.Fingerprint); err != nil {
			return nil, err
		}
		n.Kind = NodeKind(kind)
		n.Exported = exported != 0
		n.IsTest = isTest != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNode(row *sql.Row) (*Node, error) {
	var n Node
	var kind string
	var exported, isTest int
	if err := row.Scan(&n.ID, &n.FilePath, &kind, &n.Name, &n.QualifiedName, &n.StartLine, &n.EndLine,
		&n.StartByte, &n.EndByte, &n.Signature, &n.Documentation, &n.Language, &exported, &isTest, &n.Fingerprint); err != nil {
		return nil, err
	}
	n.Kind = NodeKind(kind)
	n.Exported = exported != 0
	n.IsTest = isTest != 0
	return &n, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
