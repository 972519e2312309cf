// Package testutil provides shared test helpers for setting up vaults and
// graph stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/storage"
)

// TestStore creates an in-memory graph store that is closed on cleanup.
func TestStore(t *testing.T) graph.Store {
	t.Helper()
	store, err := graph.OpenBadgerInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	files, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, files
}

// WriteFile writes a file under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// SeedVault fills dir with the canonical three-note vault used across
// sync, API, and MCP tests: two root notes linking each other and a
// subfolder note linking back to the first.
func SeedVault(t *testing.T, dir string) {
	t.Helper()
	WriteFile(t, dir, "note1.md", "# Note 1\n\nLink to [[note2]].\n\n#tag1")
	WriteFile(t, dir, "note2.md", "# Note 2\n\nBack to [[note1]].\n\n#tag2")
	WriteFile(t, dir, "subfolder/note3.md", "# Note 3\n\nSee [[note1]].\n\n#tag3")
}
