package vaultservice

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/hugin/internal/apperr"
	"github.com/starford/hugin/internal/cognitive"
	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/sse"
	"github.com/starford/hugin/internal/testutil"
)

func testService(t *testing.T, driver string) *Service {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	svc := NewService(driver, "", logger, broker)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func openSeeded(t *testing.T, driver string) (*Service, string) {
	t.Helper()
	svc := testService(t, driver)
	dir := t.TempDir()
	testutil.SeedVault(t, dir)
	if _, err := svc.Open(dir); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc, dir
}

func findNode(nodes []graph.Node, path string) (graph.Node, bool) {
	for _, n := range nodes {
		if n.Path == path {
			return n, true
		}
	}
	return graph.Node{}, false
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestOpenSyncsVault(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	nodes, edges, err := svc.GraphData()
	if err != nil {
		t.Fatalf("GraphData: %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(nodes))
	}
	if len(edges) != 6 {
		t.Errorf("edges = %d, want 6", len(edges))
	}
	if _, ok := findNode(nodes, "subfolder/note3.md"); !ok {
		t.Error("subfolder note missing from projection")
	}
}

func TestOpenMissingDirFails(t *testing.T) {
	svc := testService(t, DriverSQLite)
	if _, err := svc.Open(filepath.Join(t.TempDir(), "no-such-vault")); err == nil {
		t.Fatal("expected error for missing vault directory")
	}
}

func TestOpenUnknownDriverFails(t *testing.T) {
	svc := testService(t, "bolt")
	if _, err := svc.Open(t.TempDir()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenReplacesPreviousSession(t *testing.T) {
	svc := testService(t, DriverSQLite)

	dirA := t.TempDir()
	testutil.SeedVault(t, dirA)
	if _, err := svc.Open(dirA); err != nil {
		t.Fatalf("Open A: %v", err)
	}

	dirB := t.TempDir()
	testutil.WriteFile(t, dirB, "single.md", "# Single")
	stats, err := svc.Open(dirB)
	if err != nil {
		t.Fatalf("Open B: %v", err)
	}
	if stats.Nodes != 1 {
		t.Errorf("nodes = %d, want 1", stats.Nodes)
	}

	vs, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if vs.Path != dirB {
		t.Errorf("path = %q, want %q", vs.Path, dirB)
	}
}

func TestOperationsWithoutVault(t *testing.T) {
	svc := testService(t, DriverSQLite)

	checks := map[string]error{}
	_, err := svc.Resync()
	checks["Resync"] = err
	_, _, err = svc.GraphData()
	checks["GraphData"] = err
	_, err = svc.FileTree()
	checks["FileTree"] = err
	_, err = svc.ReadFile("a.md")
	checks["ReadFile"] = err
	_, err = svc.SaveFile("a.md", []byte("x"), "")
	checks["SaveFile"] = err
	checks["DeleteFile"] = svc.DeleteFile("a.md")
	_, err = svc.Search("x", 10)
	checks["Search"] = err
	_, err = svc.Backlinks("a.md")
	checks["Backlinks"] = err
	_, err = svc.Stats()
	checks["Stats"] = err

	for op, err := range checks {
		if !errors.Is(err, apperr.ErrNoVault) {
			t.Errorf("%s: err = %v, want ErrNoVault", op, err)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)
	if err := svc.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, _, err := svc.GraphData(); !errors.Is(err, apperr.ErrNoVault) {
		t.Errorf("err = %v, want ErrNoVault after close", err)
	}
}

func TestReadFile(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	fc, err := svc.ReadFile("note1.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(fc.Content, "# Note 1") {
		t.Errorf("content = %q, want note body", fc.Content)
	}
	if fc.Checksum != cognitive.Fingerprint([]byte(fc.Content)) {
		t.Error("checksum does not match content fingerprint")
	}

	if _, err := svc.ReadFile("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveFileCreatesAndIndexes(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	content := []byte("# Fresh\n\n#new")
	fc, err := svc.SaveFile("fresh.md", content, "")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if fc.Checksum != cognitive.Fingerprint(content) {
		t.Error("checksum does not match written content")
	}

	nodes, _, err := svc.GraphData()
	if err != nil {
		t.Fatalf("GraphData: %v", err)
	}
	n, ok := findNode(nodes, "fresh.md")
	if !ok {
		t.Fatal("saved file missing from projection")
	}
	if n.Title != "Fresh" {
		t.Errorf("title = %q, want Fresh", n.Title)
	}
}

func TestSaveFileOptimisticConcurrency(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	fc, err := svc.ReadFile("note1.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if _, err := svc.SaveFile("note1.md", []byte("stale write"), "deadbeef"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict on stale fingerprint", err)
	}
	if _, err := svc.SaveFile("note1.md", []byte("# Note 1 v2"), fc.Checksum); err != nil {
		t.Errorf("SaveFile with matching fingerprint: %v", err)
	}
	if _, err := svc.SaveFile("never-existed.md", []byte("x"), "deadbeef"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict on missing file", err)
	}
}

func TestDeleteFileRemovesProjection(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	if err := svc.DeleteFile("note2.md"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	nodes, edges, err := svc.GraphData()
	if err != nil {
		t.Fatalf("GraphData: %v", err)
	}
	if _, ok := findNode(nodes, "note2.md"); ok {
		t.Error("deleted file still in projection")
	}
	gone := cognitive.PathID("note2.md")
	for _, e := range edges {
		if e.Src == gone || e.Dst == gone {
			t.Errorf("incident edge survived: %+v", e)
		}
	}

	if err := svc.DeleteFile("note2.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound on second delete", err)
	}
}

func TestFileTree(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	tree, err := svc.FileTree()
	if err != nil {
		t.Fatalf("FileTree: %v", err)
	}
	if !tree.Dir {
		t.Fatal("root must be a directory")
	}
	if len(tree.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(tree.Children))
	}

	// Directories sort before files.
	sub := tree.Children[0]
	if sub.Name != "subfolder" || !sub.Dir {
		t.Fatalf("first child = %+v, want subfolder dir", sub)
	}
	if len(sub.Children) != 1 || sub.Children[0].Path != "subfolder/note3.md" {
		t.Errorf("subfolder children = %+v", sub.Children)
	}
	if tree.Children[1].Name != "note1.md" || tree.Children[2].Name != "note2.md" {
		t.Errorf("file order = %q, %q", tree.Children[1].Name, tree.Children[2].Name)
	}
}

func TestSearchSQLite(t *testing.T) {
	svc, dir := openSeeded(t, DriverSQLite)
	testutil.WriteFile(t, dir, "instrument.md", "# Instrument\n\nNotes about the xylophone.")
	if _, err := svc.Resync(); err != nil {
		t.Fatalf("Resync: %v", err)
	}

	results, err := svc.Search("xylophone", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Path != "instrument.md" {
		t.Errorf("path = %q, want instrument.md", results[0].Path)
	}
}

func TestSearchBadgerFallback(t *testing.T) {
	svc, _ := openSeeded(t, DriverBadger)
	if _, err := svc.SaveFile("travel.md", []byte("# Travel\n\nNotes about Zanzibar."), ""); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	results, err := svc.Search("zanzibar", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Path != "travel.md" {
		t.Errorf("path = %q, want travel.md", results[0].Path)
	}
	if !strings.Contains(results[0].Snippet, "Zanzibar") {
		t.Errorf("snippet = %q, want match text", results[0].Snippet)
	}
}

func TestBacklinks(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)

	paths, err := svc.Backlinks("note1.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	want := []string{"note2.md", "subfolder/note3.md"}
	if len(paths) != len(want) {
		t.Fatalf("backlinks = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("backlinks[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	single, err := svc.Backlinks("note2.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(single) != 1 || single[0] != "note1.md" {
		t.Errorf("backlinks = %v, want [note1.md]", single)
	}
}

func TestStats(t *testing.T) {
	svc, dir := openSeeded(t, DriverSQLite)

	vs, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if vs.Path != dir {
		t.Errorf("path = %q, want %q", vs.Path, dir)
	}
	if vs.Nodes != 3 || vs.Edges != 6 {
		t.Errorf("nodes/edges = %d/%d, want 3/6", vs.Nodes, vs.Edges)
	}
	if vs.Tags != 3 {
		t.Errorf("tags = %d, want 3", vs.Tags)
	}
	if vs.Types["note"] != 3 {
		t.Errorf("types = %v, want note:3", vs.Types)
	}
}

func TestResyncConverges(t *testing.T) {
	svc, dir := openSeeded(t, DriverSQLite)

	testutil.WriteFile(t, dir, "late.md", "# Late\n\n[[note1]]")
	stats, err := svc.Resync()
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if stats.Nodes != 4 {
		t.Errorf("nodes = %d, want 4", stats.Nodes)
	}

	again, err := svc.Resync()
	if err != nil {
		t.Fatalf("second Resync: %v", err)
	}
	if again.Nodes != stats.Nodes || again.Edges != stats.Edges {
		t.Errorf("resync drifted: %+v vs %+v", again, stats)
	}
}

func TestWatcherIndexesExternalWrite(t *testing.T) {
	svc, dir := openSeeded(t, DriverSQLite)

	if err := os.WriteFile(filepath.Join(dir, "external.md"), []byte("# External\n\n#ext"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, func() bool {
		nodes, _, err := svc.GraphData()
		if err != nil {
			return false
		}
		n, ok := findNode(nodes, "external.md")
		return ok && n.Title == "External"
	})
}

func TestWatcherRemovesDeletedFile(t *testing.T) {
	svc, dir := openSeeded(t, DriverSQLite)

	if err := os.Remove(filepath.Join(dir, "note2.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, func() bool {
		nodes, _, err := svc.GraphData()
		if err != nil {
			return false
		}
		_, ok := findNode(nodes, "note2.md")
		return !ok
	})
}

func TestSaveFilePublishesEvent(t *testing.T) {
	svc, _ := openSeeded(t, DriverSQLite)
	ch := svc.broker.Subscribe()
	defer svc.broker.Unsubscribe(ch)

	if _, err := svc.SaveFile("fresh.md", []byte("# Fresh"), ""); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "file.indexed") && strings.Contains(s, "fresh.md") {
				return
			}
		case <-deadline:
			t.Fatal("file.indexed event not delivered")
		}
	}
}
