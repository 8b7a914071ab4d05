// Package cache remembers file digests between runs so unchanged files are
// not hashed again. An entry is reused only while the file's size and
// modification time are unchanged and it holds every requested algorithm.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
)

var logger = logging.Get("cache")

// Cache is a digest cache scoped by walk root. Lookup and Record are safe
// for concurrent use; recorded entries are written by Flush.
type Cache struct {
	store *Store

	mu      sync.Mutex
	pending map[string]map[string]*Entry
}

// Open opens or creates the cache in the directory path.
func Open(path string) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening digest cache %s: %w", path, err)
	}

	return &Cache{
		store:   store,
		pending: make(map[string]map[string]*Entry),
	}, nil
}

// Close flushes pending entries and closes the cache.
func (c *Cache) Close() error {
	flushErr := c.Flush()
	closeErr := c.store.Close()
	return errors.Join(flushErr, closeErr)
}

// Lookup returns cached digests for relPath under root if the entry still
// matches size and modTime and covers every algorithm. Read failures are
// logged and treated as misses.
func (c *Cache) Lookup(root, relPath string, size int64, modTime time.Time, algorithms []string) (map[string]string, bool) {
	entry, err := c.store.Get(root, relPath)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("cache read failed", "path", relPath, "error", err)
		}
		return nil, false
	}

	if !entry.Covers(size, modTime.UnixNano(), algorithms) {
		return nil, false
	}

	digests := make(map[string]string, len(algorithms))
	for _, a := range algorithms {
		digests[a] = entry.Digests[a]
	}
	return digests, true
}

// Record queues digests for relPath under root.
func (c *Cache) Record(root, relPath string, size int64, modTime time.Time, digests map[string]string) {
	entry := &Entry{
		Version: Version,
		Size:    size,
		Mtime:   modTime.UnixNano(),
		Digests: digests,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	byPath, ok := c.pending[root]
	if !ok {
		byPath = make(map[string]*Entry)
		c.pending[root] = byPath
	}
	byPath[relPath] = entry
}

// Flush writes queued entries.
func (c *Cache) Flush() error {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]map[string]*Entry)
	c.mu.Unlock()

	for root, entries := range pending {
		if err := c.store.PutBatch(root, entries); err != nil {
			return fmt.Errorf("writing digest cache for %s: %w", root, err)
		}
		logger.Debug("cache flushed", "root", root, "entries", len(entries))
	}
	return nil
}

// Clear removes every entry under root and returns how many were removed.
func (c *Cache) Clear(root string) (int, error) {
	return c.store.DeletePrefix(root)
}

// ClearAll removes every entry.
func (c *Cache) ClearAll() (int, error) {
	return c.store.DeletePrefix("")
}

// Len returns the number of stored entries.
func (c *Cache) Len() (int, error) {
	return c.store.Count("")
}
