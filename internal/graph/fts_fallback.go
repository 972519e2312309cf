//go:build !sqlite_fts5

package graph

import (
	"database/sql"
	"fmt"

	"github.com/starford/hugin/internal/cognitive"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on the nodes table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error {
	// Content is already stored in the nodes table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

func ftsClear(_ *sql.Tx) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (s *SQLiteStore) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := s.conn.Query(`
		SELECT id, path, title, substr(content, 1, 200)
		FROM nodes
		WHERE title LIKE ? OR content LIKE ? OR path LIKE ?
		LIMIT ?
	`, like, like, like, limit)
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
