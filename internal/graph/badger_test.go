package graph

import (
	"testing"
)

func TestBadgerReopenKeepsData(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	_ = s.UpsertNode(Node{ID: "id-a", Path: "a.md", Title: "Alpha"})
	_ = s.UpsertEdge(Edge{Src: "id-a", Dst: "id-b", Relation: RelationLink, Weight: 1.0})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	nodes, err := s.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Title != "Alpha" {
		t.Errorf("nodes after reopen = %+v", nodes)
	}
	edges, err := s.Edges()
	if err != nil {
		t.Fatalf("Edges: %v", err)
	}
	if len(edges) != 1 || edges[0].Dst != "id-b" {
		t.Errorf("edges after reopen = %+v", edges)
	}
}

func TestSplitCompositeKey(t *testing.T) {
	src, dst := splitCompositeKey(edgeKey("note-1", "note-2"))
	if src != "note-1" || dst != "note-2" {
		t.Errorf("split = %q, %q", src, dst)
	}

	dst, src = splitCompositeKey(incomingKey("note-2", "note-1"))
	if dst != "note-2" || src != "note-1" {
		t.Errorf("split = %q, %q", dst, src)
	}
}

func TestBadgerSelfLoopDeletion(t *testing.T) {
	s, err := OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("OpenBadgerInMemory: %v", err)
	}
	defer s.Close()

	_ = s.UpsertEdge(Edge{Src: "a", Dst: "a", Relation: RelationLink, Weight: 1.0})
	if err := s.DeleteEdgesIncidentTo("a"); err != nil {
		t.Fatalf("DeleteEdgesIncidentTo: %v", err)
	}
	edges, _ := s.Edges()
	if len(edges) != 0 {
		t.Errorf("self-loop survived deletion: %+v", edges)
	}
}
