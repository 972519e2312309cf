package graph

import (
	"path/filepath"
	"testing"

	"github.com/starford/hugin/internal/cognitive"
)

func testSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBadger(t *testing.T) Store {
	t.Helper()
	s, err := OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("OpenBadgerInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// eachStore runs the same assertions against every backend.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, testSQLite(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, testBadger(t)) })
}

func TestUpsertAndListNodes(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		a := Node{ID: "id-a", Path: "a.md", Title: "Alpha", Content: "alpha body", Type: "note", Hash: "h1", CreatedAt: 100, UpdatedAt: 200}
		b := Node{ID: "id-b", Path: "b.md", Title: "Beta", Type: "note"}
		if err := s.UpsertNode(a); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}
		if err := s.UpsertNode(b); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}

		nodes, err := s.Nodes()
		if err != nil {
			t.Fatalf("Nodes: %v", err)
		}
		if len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(nodes))
		}
		byID := make(map[cognitive.ObjectID]Node)
		for _, n := range nodes {
			byID[n.ID] = n
		}
		got := byID["id-a"]
		if got.Path != "a.md" || got.Title != "Alpha" || got.Content != "alpha body" || got.Hash != "h1" {
			t.Errorf("node a = %+v", got)
		}
		if got.CreatedAt != 100 || got.UpdatedAt != 200 {
			t.Errorf("timestamps = %d/%d, want 100/200", got.CreatedAt, got.UpdatedAt)
		}
	})
}

func TestUpsertNodeReplacesExisting(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.UpsertNode(Node{ID: "id-a", Path: "a.md", Title: "Old", Hash: "1"})
		_ = s.UpsertNode(Node{ID: "id-a", Path: "a.md", Title: "New", Hash: "2"})

		nodes, err := s.Nodes()
		if err != nil {
			t.Fatalf("Nodes: %v", err)
		}
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node after re-upsert, got %d", len(nodes))
		}
		if nodes[0].Title != "New" || nodes[0].Hash != "2" {
			t.Errorf("node = %+v, want replaced fields", nodes[0])
		}
	})
}

func TestUpsertEdgeReplacesExisting(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.UpsertEdge(Edge{Src: "a", Dst: "b", Relation: RelationLink, Weight: 1.0, Provenance: "wikilink"})
		_ = s.UpsertEdge(Edge{Src: "a", Dst: "b", Relation: RelationTagged, Weight: 1.0, Provenance: "tag"})

		edges, err := s.Edges()
		if err != nil {
			t.Fatalf("Edges: %v", err)
		}
		if len(edges) != 1 {
			t.Fatalf("expected 1 edge for the (src, dst) pair, got %d", len(edges))
		}
		if edges[0].Relation != RelationTagged || edges[0].Provenance != "tag" {
			t.Errorf("edge = %+v, want replaced fields", edges[0])
		}
	})
}

func TestDeleteNode(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.UpsertNode(Node{ID: "id-a", Path: "a.md"})
		_ = s.UpsertNode(Node{ID: "id-b", Path: "b.md"})

		if err := s.DeleteNode("id-a"); err != nil {
			t.Fatalf("DeleteNode: %v", err)
		}
		nodes, _ := s.Nodes()
		if len(nodes) != 1 || nodes[0].ID != "id-b" {
			t.Errorf("nodes after delete = %+v", nodes)
		}

		// Deleting an absent node is not an error.
		if err := s.DeleteNode("missing"); err != nil {
			t.Errorf("DeleteNode(missing): %v", err)
		}
	})
}

func TestDeleteEdgesIncidentTo(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.UpsertEdge(Edge{Src: "a", Dst: "b", Relation: RelationLink, Weight: 1.0})
		_ = s.UpsertEdge(Edge{Src: "b", Dst: "c", Relation: RelationLink, Weight: 1.0})
		_ = s.UpsertEdge(Edge{Src: "c", Dst: "a", Relation: RelationLink, Weight: 1.0})
		_ = s.UpsertEdge(Edge{Src: "d", Dst: "b", Relation: RelationTagged, Weight: 1.0})

		if err := s.DeleteEdgesIncidentTo("b"); err != nil {
			t.Fatalf("DeleteEdgesIncidentTo: %v", err)
		}

		edges, err := s.Edges()
		if err != nil {
			t.Fatalf("Edges: %v", err)
		}
		if len(edges) != 1 {
			t.Fatalf("expected only c->a to survive, got %+v", edges)
		}
		if edges[0].Src != "c" || edges[0].Dst != "a" {
			t.Errorf("surviving edge = %+v", edges[0])
		}
	})
}

func TestClear(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_ = s.UpsertNode(Node{ID: "id-a", Path: "a.md"})
		_ = s.UpsertEdge(Edge{Src: "a", Dst: "b", Relation: RelationLink, Weight: 1.0})

		if err := s.Clear(); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		nodes, _ := s.Nodes()
		edges, _ := s.Edges()
		if len(nodes) != 0 || len(edges) != 0 {
			t.Errorf("after clear: %d nodes, %d edges", len(nodes), len(edges))
		}
	})
}

func TestEmptyStore(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		nodes, err := s.Nodes()
		if err != nil {
			t.Fatalf("Nodes: %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("expected empty node list, got %d", len(nodes))
		}
		edges, err := s.Edges()
		if err != nil {
			t.Fatalf("Edges: %v", err)
		}
		if len(edges) != 0 {
			t.Errorf("expected empty edge list, got %d", len(edges))
		}
	})
}

func TestSearch_Basic(t *testing.T) {
	s := testSQLite(t).(*SQLiteStore)
	_ = s.UpsertNode(Node{ID: "id-s", Path: "s.md", Title: "Search Me", Content: "uniqueword appears here"})

	results, err := s.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
	if results[0].ID != "id-s" {
		t.Errorf("result id = %q", results[0].ID)
	}
}
