package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitForPaths drains batches until every wanted path has been seen.
func waitForPaths(t *testing.T, ch <-chan []string, timeout time.Duration, want ...string) {
	t.Helper()
	seen := make(map[string]bool)
	deadline := time.After(timeout)
	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				t.Fatal("watch channel closed early")
			}
			for _, p := range batch {
				seen[p] = true
			}
			missing := false
			for _, w := range want {
				if !seen[w] {
					missing = true
				}
			}
			if !missing {
				return
			}
		case <-deadline:
			t.Fatalf("timed out; seen %v, want %v", seen, want)
		}
	}
}

func TestWatch_DeliversCoalescedBatch(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, root, testLogger())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "one.md"), []byte("# One"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "two.md"), []byte("# Two"), 0o644)

	waitForPaths(t, ch, 5*time.Second, "one.md", "two.md")
}

func TestWatch_NewSubdirWatched(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, root, testLogger())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(300 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	waitForPaths(t, ch, 5*time.Second, "subdir/deep.md")
}

func TestWatch_HiddenEntriesIgnored(t *testing.T) {
	root := t.TempDir()
	_ = os.MkdirAll(filepath.Join(root, ".hugin"), 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, root, testLogger())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, ".hugin", "graph.db"), []byte("index"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".hidden.md"), []byte("# Hidden"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "visible.md"), []byte("# Visible"), 0o644)

	waitForPaths(t, ch, 5*time.Second, "visible.md")

	// Nothing hidden should have slipped into a batch.
	select {
	case batch := <-ch:
		for _, p := range batch {
			if p != "visible.md" {
				t.Errorf("unexpected path in batch: %s", p)
			}
		}
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatch_CancelClosesChannel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := Watch(ctx, root, testLogger())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after cancel")
	}
}

func TestHiddenPath(t *testing.T) {
	cases := []struct {
		rel  string
		want bool
	}{
		{"note.md", false},
		{"sub/note.md", false},
		{".hugin/graph.db", true},
		{"sub/.obsidian/app.json", true},
		{".hidden.md", true},
	}
	for _, c := range cases {
		if got := hiddenPath(c.rel); got != c.want {
			t.Errorf("hiddenPath(%q) = %v, want %v", c.rel, got, c.want)
		}
	}
}
