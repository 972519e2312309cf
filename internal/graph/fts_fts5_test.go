//go:build sqlite_fts5

package graph

import (
	"path/filepath"
	"strings"
	"testing"
)

func testFTSStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFTS5_TableExists(t *testing.T) {
	s := testFTSStore(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM nodes_fts`).Scan(&count); err != nil {
		t.Fatalf("nodes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	s := testFTSStore(t)
	n := Node{
		ID:      "id-fts",
		Path:    "fts.md",
		Title:   "FTS Note",
		Content: "Hugin provides powerful full-text search capabilities.",
	}
	if err := s.UpsertNode(n); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}

	results, err := s.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "fts.md" {
		t.Errorf("path = %q", results[0].Path)
	}
	// FTS5 snippet should contain bold markers.
	if !strings.Contains(results[0].Snippet, "<b>") {
		t.Errorf("snippet = %q, want highlighted match", results[0].Snippet)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	s := testFTSStore(t)
	_ = s.UpsertNode(Node{ID: "id-gone", Path: "gone.md", Content: "vanishing content"})
	_ = s.DeleteNode("id-gone")

	results, _ := s.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.md" {
			t.Error("deleted node still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	s := testFTSStore(t)
	_ = s.UpsertNode(Node{ID: "id-evo", Path: "evo.md", Title: "Old", Content: "original text"})
	_ = s.UpsertNode(Node{ID: "id-evo", Path: "evo.md", Title: "New", Content: "replacement text"})

	results, _ := s.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = s.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}

func TestFTS5_ClearEmptiesIndex(t *testing.T) {
	s := testFTSStore(t)
	_ = s.UpsertNode(Node{ID: "id-c", Path: "c.md", Content: "clearable content"})
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	results, _ := s.Search("clearable", 10)
	if len(results) != 0 {
		t.Errorf("FTS index not cleared: %+v", results)
	}
}
