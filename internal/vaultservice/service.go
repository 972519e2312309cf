// Package vaultservice coordinates the open-vault session: file storage,
// graph store, sync, and change watching behind one lock.
package vaultservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/starford/hugin/internal/adapter"
	"github.com/starford/hugin/internal/apperr"
	"github.com/starford/hugin/internal/cognitive"
	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/obsidian"
	"github.com/starford/hugin/internal/sse"
	"github.com/starford/hugin/internal/storage"
	"github.com/starford/hugin/internal/vault"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Service owns at most one open vault at a time. Session transitions are
// serialized by opMu; all access to the live session, including watcher
// batches, goes through mu.
type Service struct {
	driver    string
	storePath string // override; empty means <vault>/.hugin
	logger    *slog.Logger
	broker    *sse.Broker

	opMu sync.Mutex
	mu   sync.Mutex
	sess *session
}

// session bundles everything tied to one open vault.
type session struct {
	root   string
	files  *storage.FS
	store  graph.Store
	syncer *vault.Syncer
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a vault service. driver selects the graph store
// backend; storePath overrides the default store location, which must stay
// hidden from the vault walker (the default <vault>/.hugin is a dot-entry
// and therefore skipped).
func NewService(driver, storePath string, logger *slog.Logger, broker *sse.Broker) *Service {
	return &Service{driver: driver, storePath: storePath, logger: logger, broker: broker}
}

func (s *Service) openStore(vaultPath string) (graph.Store, error) {
	dir := s.storePath
	if dir == "" {
		dir = filepath.Join(vaultPath, ".hugin")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create store dir: %w", err)
	}
	switch s.driver {
	case DriverBadger:
		return graph.OpenBadger(filepath.Join(dir, "badger"))
	case DriverSQLite, "":
		return graph.OpenSQLite(filepath.Join(dir, "graph.db"))
	default:
		return nil, fmt.Errorf("vault: unknown store driver %q", s.driver)
	}
}

// Open closes any previous session, opens the graph store for path, runs a
// full sync, and starts the change watcher.
func (s *Service) Open(path string) (vault.Stats, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.closeCurrent(); err != nil {
		return vault.Stats{}, err
	}

	files, err := storage.NewFS(path)
	if err != nil {
		return vault.Stats{}, err
	}
	store, err := s.openStore(files.Root())
	if err != nil {
		return vault.Stats{}, err
	}

	registry := adapter.NewRegistry(obsidian.New())
	syncer := vault.NewSyncer(registry, store, files, s.logger)

	stats, err := syncer.FullSync()
	if err != nil {
		_ = store.Close()
		return stats, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches, err := vault.Watch(ctx, files.Root(), s.logger)
	if err != nil {
		cancel()
		_ = store.Close()
		return stats, err
	}

	sess := &session{
		root:   files.Root(),
		files:  files,
		store:  store,
		syncer: syncer,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()

	go s.consume(sess, batches)

	s.broker.Publish(sse.Event{Type: sse.EventVaultOpened, Data: map[string]string{"path": sess.root}})
	s.publishSynced(stats)
	return stats, nil
}

// Close stops the watcher and closes the graph store. Closing with no open
// vault is a no-op.
func (s *Service) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.closeCurrent()
}

// closeCurrent detaches the session before tearing it down, so the watcher
// consumer exits on its own and never touches a closed store.
func (s *Service) closeCurrent() error {
	s.mu.Lock()
	sess := s.sess
	s.sess = nil
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	sess.cancel()
	<-sess.done
	return sess.store.Close()
}

// consume applies watcher batches to the projection until the channel
// closes or the session is replaced.
func (s *Service) consume(sess *session, batches <-chan []string) {
	defer close(sess.done)
	for batch := range batches {
		for _, rel := range batch {
			s.mu.Lock()
			if s.sess != sess {
				s.mu.Unlock()
				return
			}
			res, err := sess.syncer.SyncFile(rel)
			s.mu.Unlock()
			if err != nil {
				s.logger.Warn("vault: watch sync failed",
					slog.String("path", rel), slog.String("error", err.Error()))
				continue
			}
			switch res {
			case vault.SyncIndexed:
				s.broker.PublishFileEvent(sse.EventFileIndexed, rel)
			case vault.SyncRemoved:
				s.broker.PublishFileEvent(sse.EventFileRemoved, rel)
			}
		}
	}
}

// current returns the open session. Callers hold mu.
func (s *Service) current() (*session, error) {
	if s.sess == nil {
		return nil, apperr.ErrNoVault
	}
	return s.sess, nil
}

func (s *Service) publishSynced(stats vault.Stats) {
	s.broker.Publish(sse.Event{Type: sse.EventVaultSynced, Data: map[string]int{
		"files": stats.Files,
		"nodes": stats.Nodes,
		"edges": stats.Edges,
	}})
}

// Resync rebuilds the whole projection from the vault files.
func (s *Service) Resync() (vault.Stats, error) {
	s.mu.Lock()
	sess, err := s.current()
	if err != nil {
		s.mu.Unlock()
		return vault.Stats{}, err
	}
	stats, err := sess.syncer.FullSync()
	s.mu.Unlock()
	if err != nil {
		return stats, err
	}
	s.publishSynced(stats)
	return stats, nil
}

// GraphData returns every node and edge of the projection.
func (s *Service) GraphData() ([]graph.Node, []graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	nodes, err := sess.store.Nodes()
	if err != nil {
		return nil, nil, err
	}
	edges, err := sess.store.Edges()
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

// TreeNode is one entry in the nested vault file tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Dir      bool        `json:"dir"`
	Children []*TreeNode `json:"children,omitempty"`
}

// FileTree returns the vault layout as a nested tree rooted at the vault
// directory. Hidden entries are absent because the provider never lists
// them; directories are reconstructed from file paths, so an empty
// directory does not appear.
func (s *Service) FileTree() (*TreeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	metas, err := sess.files.List("")
	if err != nil {
		return nil, err
	}
	root := &TreeNode{Name: filepath.Base(sess.root), Dir: true}
	for _, m := range metas {
		insertPath(root, m.Path)
	}
	sortTree(root)
	return root, nil
}

func insertPath(root *TreeNode, rel string) {
	parts := strings.Split(rel, "/")
	cur := root
	for i, part := range parts {
		child := findChild(cur, part)
		if child == nil {
			child = &TreeNode{
				Name: part,
				Path: strings.Join(parts[:i+1], "/"),
				Dir:  i < len(parts)-1,
			}
			cur.Children = append(cur.Children, child)
		}
		cur = child
	}
}

func findChild(n *TreeNode, name string) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func sortTree(n *TreeNode) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}

// ListFiles returns relative paths of vault files, optionally limited to
// one folder.
func (s *Service) ListFiles(folder string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	metas, err := sess.files.List(folder)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return paths, nil
}

// FileContent is the full representation of one vault file.
type FileContent struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// ReadFile reads one vault file with its content fingerprint.
func (s *Service) ReadFile(rel string) (*FileContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	data, err := sess.files.Read(rel)
	if err != nil {
		return nil, err
	}
	return &FileContent{
		Path:     rel,
		Content:  string(data),
		Checksum: cognitive.Fingerprint(data),
	}, nil
}

// SaveFile writes content and brings the projection up to date. A non-empty
// ifMatch must equal the current content fingerprint or the write is
// rejected with apperr.ErrConflict; ifMatch against a missing file is also
// a conflict.
func (s *Service) SaveFile(rel string, content []byte, ifMatch string) (*FileContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if ifMatch != "" {
		existing, err := sess.files.Read(rel)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.ErrConflict
			}
			return nil, err
		}
		if cognitive.Fingerprint(existing) != ifMatch {
			return nil, apperr.ErrConflict
		}
	}
	if err := sess.files.Write(rel, content); err != nil {
		return nil, err
	}
	res, err := sess.syncer.SyncFile(rel)
	if err != nil {
		return nil, err
	}
	if res == vault.SyncIndexed {
		s.broker.PublishFileEvent(sse.EventFileIndexed, rel)
	}
	return &FileContent{
		Path:     rel,
		Content:  string(content),
		Checksum: cognitive.Fingerprint(content),
	}, nil
}

// DeleteFile removes a vault file along with its node and incident edges.
func (s *Service) DeleteFile(rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return err
	}
	if err := sess.files.Delete(rel); err != nil {
		return err
	}
	res, err := sess.syncer.SyncFile(rel)
	if err != nil {
		return err
	}
	if res == vault.SyncRemoved {
		s.broker.PublishFileEvent(sse.EventFileRemoved, rel)
	}
	return nil
}

// Search queries the node projection. Stores with native search are used
// directly; otherwise a linear scan over nodes serves the query.
func (s *Service) Search(query string, limit int) ([]graph.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if searcher, ok := sess.store.(graph.Searcher); ok {
		return searcher.Search(query, limit)
	}
	return scanNodes(sess.store, query, limit)
}

// scanNodes is the fallback for stores without native search. Matching is
// a case-insensitive substring check over title, content, and path.
func scanNodes(store graph.Store, query string, limit int) ([]graph.SearchResult, error) {
	nodes, err := store.Nodes()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	results := make([]graph.SearchResult, 0, limit)
	for _, n := range nodes {
		if len(results) >= limit {
			break
		}
		if !strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) &&
			!strings.Contains(strings.ToLower(n.Path), q) {
			continue
		}
		snippet := n.Content
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		results = append(results, graph.SearchResult{
			ID:      n.ID,
			Path:    n.Path,
			Title:   n.Title,
			Snippet: snippet,
		})
	}
	return results, nil
}

// Backlinks returns the paths of notes whose link edges point at rel,
// sorted for stable output.
func (s *Service) Backlinks(rel string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	id := cognitive.PathID(rel)
	edges, err := sess.store.Edges()
	if err != nil {
		return nil, err
	}
	var srcs []cognitive.ObjectID
	for _, e := range edges {
		if e.Dst == id && e.Relation == graph.RelationLink {
			srcs = append(srcs, e.Src)
		}
	}
	paths := []string{}
	if len(srcs) == 0 {
		return paths, nil
	}
	nodes, err := sess.store.Nodes()
	if err != nil {
		return nil, err
	}
	byID := make(map[cognitive.ObjectID]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, src := range srcs {
		if n, ok := byID[src]; ok {
			paths = append(paths, n.Path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// VaultStats summarizes the open vault's projection.
type VaultStats struct {
	Path  string         `json:"path"`
	Nodes int            `json:"nodes"`
	Edges int            `json:"edges"`
	Tags  int            `json:"tags"`
	Types map[string]int `json:"types"`
}

// Stats counts nodes, edges, and distinct tags, with a per-type breakdown.
func (s *Service) Stats() (*VaultStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	nodes, err := sess.store.Nodes()
	if err != nil {
		return nil, err
	}
	edges, err := sess.store.Edges()
	if err != nil {
		return nil, err
	}
	types := make(map[string]int)
	for _, n := range nodes {
		types[n.Type]++
	}
	tags := make(map[cognitive.ObjectID]struct{})
	for _, e := range edges {
		if e.Relation == graph.RelationTagged {
			tags[e.Dst] = struct{}{}
		}
	}
	return &VaultStats{
		Path:  sess.root,
		Nodes: len(nodes),
		Edges: len(edges),
		Tags:  len(tags),
		Types: types,
	}, nil
}
