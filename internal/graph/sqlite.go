package graph

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/hugin/internal/cognitive"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL DEFAULT '',
	hash       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS edges (
	src        TEXT NOT NULL,
	dst        TEXT NOT NULL,
	relation   TEXT NOT NULL DEFAULT 'link',
	weight     REAL NOT NULL DEFAULT 1.0,
	provenance TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (src, dst)
);

CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst);
`

// SQLiteStore persists the graph projection in a single SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// Verify *SQLiteStore satisfies the store interfaces at compile time.
var (
	_ Store    = (*SQLiteStore)(nil)
	_ Searcher = (*SQLiteStore)(nil)
)

// OpenSQLite opens (or creates) the SQLite database and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("graph: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: apply fts schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// UpsertNode inserts or replaces a node and its FTS entry within a transaction.
func (s *SQLiteStore) UpsertNode(n Node) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO nodes (id, path, title, content, type, hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			content    = excluded.content,
			type       = excluded.type,
			hash       = excluded.hash,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, string(n.ID), n.Path, n.Title, n.Content, n.Type, n.Hash, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("graph: upsert node: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, string(n.ID), n.Path, n.Title, n.Content); err != nil {
		return err
	}

	return tx.Commit()
}

// UpsertEdge inserts or replaces the edge keyed by (src, dst).
func (s *SQLiteStore) UpsertEdge(e Edge) error {
	_, err := s.conn.Exec(`
		INSERT INTO edges (src, dst, relation, weight, provenance)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(src, dst) DO UPDATE SET
			relation   = excluded.relation,
			weight     = excluded.weight,
			provenance = excluded.provenance
	`, string(e.Src), string(e.Dst), e.Relation, e.Weight, e.Provenance)
	if err != nil {
		return fmt.Errorf("graph: upsert edge: %w", err)
	}
	return nil
}

// Nodes returns every stored node.
func (s *SQLiteStore) Nodes() ([]Node, error) {
	rows, err := s.conn.Query(`SELECT id, path, title, content, type, hash, created_at, updated_at FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("graph: nodes: %w", err)
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		var n Node
		var id string
		if err := rows.Scan(&id, &n.Path, &n.Title, &n.Content, &n.Type, &n.Hash, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.ID = cognitive.ObjectID(id)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Edges returns every stored edge.
func (s *SQLiteStore) Edges() ([]Edge, error) {
	rows, err := s.conn.Query(`SELECT src, dst, relation, weight, provenance FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("graph: edges: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var src, dst string
		if err := rows.Scan(&src, &dst, &e.Relation, &e.Weight, &e.Provenance); err != nil {
			return nil, err
		}
		e.Src = cognitive.ObjectID(src)
		e.Dst = cognitive.ObjectID(dst)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteNode removes a node and its FTS entry. Incident edges are left to
// DeleteEdgesIncidentTo so callers control edge lifecycle explicitly.
func (s *SQLiteStore) DeleteNode(id cognitive.ObjectID) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, string(id))
	_, _ = tx.Exec(`DELETE FROM nodes WHERE id = ?`, string(id))

	return tx.Commit()
}

// DeleteEdgesIncidentTo removes every edge touching the identity on either
// endpoint.
func (s *SQLiteStore) DeleteEdgesIncidentTo(id cognitive.ObjectID) error {
	_, err := s.conn.Exec(`DELETE FROM edges WHERE src = ? OR dst = ?`, string(id), string(id))
	if err != nil {
		return fmt.Errorf("graph: delete incident edges: %w", err)
	}
	return nil
}

// Clear removes every node and edge, leaving an empty projection.
func (s *SQLiteStore) Clear() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM edges`)
	_, _ = tx.Exec(`DELETE FROM nodes`)
	ftsClear(tx)

	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
