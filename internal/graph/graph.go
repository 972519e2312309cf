// Package graph stores the queryable projection of a vault: one node per
// indexed object plus directed edges for links and tags. The projection is
// lossy and disposable; any backend can be wiped and rebuilt from the vault
// files by a full sync.
package graph

import "github.com/starford/hugin/internal/cognitive"

// Relation values written by the vault syncer.
const (
	RelationLink   = "link"
	RelationTagged = "tagged"
)

// Node is the stored projection of one cognitive object.
type Node struct {
	ID        cognitive.ObjectID `json:"id"`
	Path      string             `json:"path"`
	Title     string             `json:"title"`
	Content   string             `json:"content,omitempty"`
	Type      string             `json:"type,omitempty"`
	Hash      string             `json:"hash,omitempty"`
	CreatedAt int64              `json:"created_at"`
	UpdatedAt int64              `json:"updated_at"`
}

// Edge is a directed relation between two nodes. (Src, Dst) is the primary
// key: upserting the same pair replaces relation, weight and provenance.
type Edge struct {
	Src        cognitive.ObjectID `json:"src"`
	Dst        cognitive.ObjectID `json:"dst"`
	Relation   string             `json:"relation"`
	Weight     float64            `json:"weight"`
	Provenance string             `json:"provenance,omitempty"`
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	ID      cognitive.ObjectID `json:"id"`
	Path    string             `json:"path"`
	Title   string             `json:"title"`
	Snippet string             `json:"snippet"`
}

// Store defines the persistence port for the graph projection. Consumers
// should depend on this interface rather than a concrete backend to
// facilitate testing with mocks.
type Store interface {
	UpsertNode(n Node) error
	UpsertEdge(e Edge) error
	Nodes() ([]Node, error)
	Edges() ([]Edge, error)
	DeleteNode(id cognitive.ObjectID) error
	DeleteEdgesIncidentTo(id cognitive.ObjectID) error
	Clear() error
	Close() error
}

// Searcher is implemented by stores with native full-text search. Callers
// type-assert and fall back to scanning Nodes() when a store lacks it.
type Searcher interface {
	Search(query string, limit int) ([]SearchResult, error)
}
