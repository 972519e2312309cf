package adapter

import (
	"path/filepath"
	"strings"
)

// Registry resolves adapters by file extension. Resolution is linear
// first-match over registration order; a later adapter claiming an
// already-claimed extension is simply never reached for it.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters, in order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter. Registration order is match order.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// ByExtension returns the first adapter claiming ext. The extension is
// compared case-insensitively and without a leading dot.
func (r *Registry) ByExtension(ext string) (Adapter, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil, false
	}
	for _, a := range r.adapters {
		for _, e := range a.Extensions() {
			if strings.ToLower(e) == ext {
				return a, true
			}
		}
	}
	return nil, false
}

// ForPath derives the extension from path and defers to ByExtension.
func (r *Registry) ForPath(path string) (Adapter, bool) {
	return r.ByExtension(filepath.Ext(path))
}

// Adapters returns the registered adapters in match order.
func (r *Registry) Adapters() []Adapter { return r.adapters }
