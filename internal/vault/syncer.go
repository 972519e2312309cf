package vault

import (
	"errors"
	"log/slog"
	"time"

	"github.com/starford/hugin/internal/adapter"
	"github.com/starford/hugin/internal/apperr"
	"github.com/starford/hugin/internal/cognitive"
	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/storage"
)

// Stats summarizes one full sync.
type Stats struct {
	Files    int // files an adapter claimed
	Nodes    int // nodes persisted
	Edges    int // edge upserts issued
	Skipped  int // claimed files that failed to read or load
	Duration time.Duration
}

// SyncResult reports what a single-file sync did to the projection.
type SyncResult int

const (
	SyncNoop    SyncResult = iota // path not claimed by any adapter
	SyncIndexed                   // node upserted
	SyncRemoved                   // node and incident edges deleted
)

// Syncer rebuilds the graph projection from vault files.
type Syncer struct {
	registry *adapter.Registry
	store    graph.Store
	files    storage.Provider
	logger   *slog.Logger
}

// NewSyncer wires a syncer over an adapter registry, a graph store, and a
// vault file provider.
func NewSyncer(registry *adapter.Registry, store graph.Store, files storage.Provider, logger *slog.Logger) *Syncer {
	return &Syncer{registry: registry, store: store, files: files, logger: logger}
}

type loadedObject struct {
	obj *cognitive.Object
	rel string
}

// FullSync clears the projection and rebuilds it from every claimed file:
//   - walk once, loading each claimed file; per-file failures are logged
//     and the file is omitted, never aborting the walk
//   - persist every node, then every edge (two passes)
//   - resolve link targets against the filename-stem index; unresolved
//     targets are dropped, colliding stems fan out to every match
//
// Storage failures abort and propagate; rerunning a full sync converges.
func (s *Syncer) FullSync() (Stats, error) {
	start := time.Now()

	if err := s.store.Clear(); err != nil {
		return Stats{}, err
	}

	metas, err := s.files.List("")
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var objects []loadedObject
	for _, m := range metas {
		ad, ok := s.registry.ForPath(m.Path)
		if !ok {
			continue
		}
		stats.Files++
		data, err := s.files.Read(m.Path)
		if err != nil {
			s.logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		obj, err := ad.Load(m.Path, data)
		if err != nil {
			s.logger.Warn("sync: load failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		objects = append(objects, loadedObject{obj: obj, rel: m.Path})
	}

	// Same stem may appear under several directories; resolution keeps
	// every candidate.
	stems := make(map[string][]cognitive.ObjectID)
	for _, l := range objects {
		stem := pathStem(l.rel)
		stems[stem] = append(stems[stem], cognitive.PathID(l.rel))
	}

	// Pass one: all nodes persisted before any edge.
	for _, l := range objects {
		if err := s.store.UpsertNode(nodeFor(l.obj, l.rel)); err != nil {
			return stats, err
		}
		stats.Nodes++
	}

	// Pass two: link edges (resolved via the stem index) and tag edges.
	for _, l := range objects {
		src := cognitive.PathID(l.rel)

		if ad, ok := s.registry.ForPath(l.rel); ok {
			for _, link := range ad.ExtractLinks(l.obj) {
				for _, dst := range stems[link.Target] {
					e := graph.Edge{
						Src:        src,
						Dst:        dst,
						Relation:   graph.RelationLink,
						Weight:     1.0,
						Provenance: string(link.Kind),
					}
					if err := s.store.UpsertEdge(e); err != nil {
						return stats, err
					}
					stats.Edges++
				}
			}
		}

		for _, tag := range l.obj.Tags() {
			e := graph.Edge{
				Src:        src,
				Dst:        TagID(tag),
				Relation:   graph.RelationTagged,
				Weight:     1.0,
				Provenance: "tag",
			}
			if err := s.store.UpsertEdge(e); err != nil {
				return stats, err
			}
			stats.Edges++
		}
	}

	stats.Duration = time.Since(start)
	s.logger.Info("sync: full sync complete",
		slog.Int("files", stats.Files),
		slog.Int("nodes", stats.Nodes),
		slog.Int("edges", stats.Edges),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// SyncFile brings the projection up to date for a single path. A missing
// file deletes its node and every incident edge. For an existing file the
// node is re-upserted, incident edges are dropped, and only tag edges are
// recreated: link edges need the full stem index, which the next full sync
// rebuilds.
func (s *Syncer) SyncFile(rel string) (SyncResult, error) {
	id := cognitive.PathID(rel)

	data, err := s.files.Read(rel)
	if errors.Is(err, apperr.ErrNotFound) {
		if err := s.store.DeleteNode(id); err != nil {
			return SyncNoop, err
		}
		if err := s.store.DeleteEdgesIncidentTo(id); err != nil {
			return SyncNoop, err
		}
		return SyncRemoved, nil
	}
	if err != nil {
		return SyncNoop, err
	}

	ad, ok := s.registry.ForPath(rel)
	if !ok {
		return SyncNoop, nil
	}

	obj, err := ad.Load(rel, data)
	if err != nil {
		return SyncNoop, err
	}

	if err := s.store.UpsertNode(nodeFor(obj, rel)); err != nil {
		return SyncNoop, err
	}
	if err := s.store.DeleteEdgesIncidentTo(id); err != nil {
		return SyncNoop, err
	}
	for _, tag := range obj.Tags() {
		e := graph.Edge{
			Src:        id,
			Dst:        TagID(tag),
			Relation:   graph.RelationTagged,
			Weight:     1.0,
			Provenance: "tag",
		}
		if err := s.store.UpsertEdge(e); err != nil {
			return SyncNoop, err
		}
	}
	return SyncIndexed, nil
}

// nodeFor projects an object onto its stored node form: title falls back to
// the file stem, type to "note", hash comes from the first file source.
func nodeFor(obj *cognitive.Object, rel string) graph.Node {
	title := obj.StringProperty("title")
	if title == "" {
		title = pathStem(rel)
	}
	content := obj.StringProperty("content")

	typ := obj.EffectiveType()
	if typ == "" {
		typ = "note"
	}

	var hash string
	for _, src := range obj.Sources() {
		switch fileSrc := src.(type) {
		case cognitive.TextFileSource:
			hash = fileSrc.Hash
		case cognitive.BinaryFileSource:
			hash = fileSrc.Hash
		}
		if hash != "" {
			break
		}
	}

	return graph.Node{
		ID:        cognitive.PathID(rel),
		Path:      rel,
		Title:     title,
		Content:   content,
		Type:      typ,
		Hash:      hash,
		CreatedAt: obj.CreatedAt(),
		UpdatedAt: obj.UpdatedAt(),
	}
}
