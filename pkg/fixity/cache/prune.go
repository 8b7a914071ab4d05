package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Prune removes entries whose file no longer exists under root, or under
// every root when root is empty. It returns the number removed. Files that
// exist but cannot be checked are kept.
func (c *Cache) Prune(root string) (int, error) {
	keys, err := c.store.keys(root)
	if err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}

	var deleted [][]byte
	for _, k := range keys {
		r, rel := ParseKey(k)
		_, err := os.Lstat(filepath.Join(r, filepath.FromSlash(rel)))
		if errors.Is(err, fs.ErrNotExist) {
			deleted = append(deleted, k)
		}
	}

	if err := c.store.deleteKeys(deleted); err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}

	logger.Info("cache pruned", "root", root, "checked", len(keys), "removed", len(deleted))
	return len(deleted), nil
}
