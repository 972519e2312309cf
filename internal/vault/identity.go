// Package vault synchronizes a directory of notes into the graph
// projection: full rebuilds, single-file updates, and a debounced watch
// source feeding the incremental path.
package vault

import (
	"path"
	"strings"

	"github.com/starford/hugin/internal/cognitive"
)

// TagID returns the stable pseudo-identity tag edges point at. Tags live in
// the "tag:" namespace so they participate in the edge table without a
// separate tag store.
func TagID(tag string) cognitive.ObjectID {
	return cognitive.ObjectID("tag:" + tag)
}

// pathStem returns the extension-less base name of a vault path. Link
// targets are written as note names, so resolution is keyed by stem.
func pathStem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
