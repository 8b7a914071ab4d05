package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_Prune(t *testing.T) {
	c := openTestCache(t)
	root := t.TempDir()
	other := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "kept.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	mtime := time.Now()
	digests := map[string]string{"cksum": "00000000"}
	c.Record(root, "docs/kept.txt", 1, mtime, digests)
	c.Record(root, "docs/gone.txt", 1, mtime, digests)
	c.Record(other, "gone-too.txt", 1, mtime, digests)
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}

	n, err := c.Prune(root)
	if err != nil {
		t.Fatalf("Prune(root) failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune(root) removed %d, want 1", n)
	}
	if _, ok := c.Lookup(root, "docs/kept.txt", 1, mtime, []string{"cksum"}); !ok {
		t.Error("entry for an existing file was pruned")
	}

	n, err = c.Prune("")
	if err != nil {
		t.Fatalf("Prune(\"\") failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune(\"\") removed %d, want 1", n)
	}
	if total, _ := c.Len(); total != 1 {
		t.Errorf("Len() = %d after pruning, want 1", total)
	}
}
