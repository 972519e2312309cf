package cognitive

import (
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectID is an opaque, immutable object identity. Compared by value,
// never mutated after creation.
type ObjectID string

// pathNamespace is the fixed UUID namespace for path-derived identities.
// Changing it invalidates every previously derived id, so don't.
var pathNamespace = uuid.MustParse("5f2b1c64-9d83-4a7e-b1f0-3c8e2a64d911")

// NewID returns a random object identity.
func NewID() ObjectID {
	return ObjectID(uuid.NewString())
}

// PathID derives a deterministic identity from a vault-relative path.
// The same path always yields the same id across process restarts; path
// separators are normalized first so the id is stable across platforms.
func PathID(rel string) ObjectID {
	return ObjectID(uuid.NewSHA1(pathNamespace, []byte(filepath.ToSlash(rel))).String())
}
