package graph

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/starford/hugin/internal/cognitive"
)

// Single-byte key prefixes keep the keyspace ordered by record kind.
const (
	prefixNode     = byte(0x01) // prefixNode + id -> JSON(Node)
	prefixEdge     = byte(0x02) // prefixEdge + src + 0x00 + dst -> JSON(Edge)
	prefixIncoming = byte(0x03) // prefixIncoming + dst + 0x00 + src -> nil
)

// BadgerStore persists the graph projection in an embedded Badger database.
// Values are JSON; the prefixIncoming index makes incident-edge deletion a
// prefix scan instead of a full pass over all edges.
type BadgerStore struct {
	db *badger.DB
}

// Verify *BadgerStore satisfies Store at compile time.
var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a Badger database rooted at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("graph: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenBadgerInMemory opens a memory-only store for tests and throwaway
// sessions. Nothing is persisted.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("graph: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func nodeKey(id cognitive.ObjectID) []byte {
	return append([]byte{prefixNode}, id...)
}

func edgeKey(src, dst cognitive.ObjectID) []byte {
	key := make([]byte, 0, 1+len(src)+1+len(dst))
	key = append(key, prefixEdge)
	key = append(key, src...)
	key = append(key, 0x00)
	key = append(key, dst...)
	return key
}

func incomingKey(dst, src cognitive.ObjectID) []byte {
	key := make([]byte, 0, 1+len(dst)+1+len(src))
	key = append(key, prefixIncoming)
	key = append(key, dst...)
	key = append(key, 0x00)
	key = append(key, src...)
	return key
}

// outgoingPrefix matches every edge key with the given source.
func outgoingPrefix(src cognitive.ObjectID) []byte {
	key := make([]byte, 0, 1+len(src)+1)
	key = append(key, prefixEdge)
	key = append(key, src...)
	key = append(key, 0x00)
	return key
}

// incomingPrefix matches every index key with the given destination.
func incomingPrefix(dst cognitive.ObjectID) []byte {
	key := make([]byte, 0, 1+len(dst)+1)
	key = append(key, prefixIncoming)
	key = append(key, dst...)
	key = append(key, 0x00)
	return key
}

// splitCompositeKey returns the two identities joined by the 0x00 separator,
// with the prefix byte already skipped. Identities never contain NUL, so the
// first separator is unambiguous.
func splitCompositeKey(key []byte) (cognitive.ObjectID, cognitive.ObjectID) {
	for i := 1; i < len(key); i++ {
		if key[i] == 0x00 {
			return cognitive.ObjectID(key[1:i]), cognitive.ObjectID(key[i+1:])
		}
	}
	return "", ""
}

// collectKeys copies every key under prefix. Deletion happens after the
// iterator is closed; keys must be copied because the iterator reuses its
// buffer.
func collectKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// UpsertNode stores the node under its identity key.
func (s *BadgerStore) UpsertNode(n Node) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("graph: encode node: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(n.ID), data)
	})
	if err != nil {
		return fmt.Errorf("graph: upsert node: %w", err)
	}
	return nil
}

// UpsertEdge stores the edge under its (src, dst) key and maintains the
// incoming index.
func (s *BadgerStore) UpsertEdge(e Edge) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("graph: encode edge: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(edgeKey(e.Src, e.Dst), data); err != nil {
			return err
		}
		return txn.Set(incomingKey(e.Dst, e.Src), []byte{})
	})
	if err != nil {
		return fmt.Errorf("graph: upsert edge: %w", err)
	}
	return nil
}

// Nodes returns every stored node.
func (s *BadgerStore) Nodes() ([]Node, error) {
	var out []Node
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixNode}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var n Node
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: nodes: %w", err)
	}
	return out, nil
}

// Edges returns every stored edge.
func (s *BadgerStore) Edges() ([]Edge, error) {
	var out []Edge
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixEdge}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e Edge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: edges: %w", err)
	}
	return out, nil
}

// DeleteNode removes the node record. Missing nodes are not an error.
func (s *BadgerStore) DeleteNode(id cognitive.ObjectID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(nodeKey(id))
	})
	if err != nil {
		return fmt.Errorf("graph: delete node: %w", err)
	}
	return nil
}

// DeleteEdgesIncidentTo removes every edge touching the identity on either
// endpoint, along with the matching index entries.
func (s *BadgerStore) DeleteEdgesIncidentTo(id cognitive.ObjectID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		// Outgoing: edge keys carry the source as their prefix.
		for _, key := range collectKeys(txn, outgoingPrefix(id)) {
			_, dst := splitCompositeKey(key)
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(incomingKey(dst, id)); err != nil {
				return err
			}
		}

		// Incoming: resolved through the secondary index.
		for _, key := range collectKeys(txn, incomingPrefix(id)) {
			_, src := splitCompositeKey(key)
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(edgeKey(src, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("graph: delete incident edges: %w", err)
	}
	return nil
}

// Clear drops every key. The database holds nothing but projection data, so
// Badger's DropAll is safe and much faster than iterating.
func (s *BadgerStore) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("graph: clear: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
