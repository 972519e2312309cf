//go:build sqlite_fts5

package graph

import (
	"database/sql"
	"fmt"

	"github.com/starford/hugin/internal/cognitive"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			id UNINDEXED,
			path UNINDEXED,
			title,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, path, title, content string) error {
	_, _ = tx.Exec(`DELETE FROM nodes_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO nodes_fts (id, path, title, content) VALUES (?, ?, ?, ?)`,
		id, path, title, content)
	if err != nil {
		return fmt.Errorf("graph: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM nodes_fts WHERE id = ?`, id)
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM nodes_fts`)
}

// Search performs an FTS5 full-text search and returns matching results with
// snippets.
func (s *SQLiteStore) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT id,
		       path,
		       title,
		       snippet(nodes_fts, 3, '<b>', '</b>', '...', 64)
		FROM nodes_fts
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("graph: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var id string
		if err := rows.Scan(&id, &r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		r.ID = cognitive.ObjectID(id)
		out = append(out, r)
	}
	return out, rows.Err()
}
