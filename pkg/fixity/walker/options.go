// Package walker digests every regular file under a directory tree. It
// traverses with fastwalk and hashes on a separate bounded worker pool,
// reusing cached digests for files whose size and mtime are unchanged.
package walker

import (
	"errors"

	"github.com/jamesainslie/fixity/pkg/fixity/cache"
	"github.com/jamesainslie/fixity/pkg/fixity/digest"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// Default concurrency when options leave it unset.
const (
	DefaultWalkWorkers = 4
	DefaultHashWorkers = 8
	DefaultQueueSize   = 256
)

// ErrNoEngine is returned when Options carries no digest engine.
var ErrNoEngine = errors.New("walker: digest engine is required")

// Options configures a Walker.
type Options struct {
	// Root is the directory to walk.
	Root string

	// Exclude holds path prefixes and glob patterns to skip. Globs match
	// the basename or the full path.
	Exclude []string

	// Engine computes the digests. Required.
	Engine *digest.Engine

	// WalkWorkers is the traversal concurrency.
	WalkWorkers int

	// HashWorkers is the number of concurrent digest computations.
	HashWorkers int

	// QueueSize buffers files between traversal and hashing.
	QueueSize int

	// Cache, if set, supplies and records digests of unchanged files.
	Cache *cache.Cache

	// OnProgress receives throttled progress snapshots. It is called from
	// several goroutines.
	OnProgress func(types.WalkProgress)

	// OnFile receives each digested file as it completes, from several
	// goroutines.
	OnFile func(types.FileDigest)
}

// Validate fills defaults and checks required fields.
func (o *Options) Validate() error {
	if o.Engine == nil {
		return ErrNoEngine
	}
	if o.Root == "" {
		o.Root = "."
	}
	if o.WalkWorkers < 1 {
		o.WalkWorkers = DefaultWalkWorkers
	}
	if o.HashWorkers < 1 {
		o.HashWorkers = DefaultHashWorkers
	}
	if o.QueueSize < 1 {
		o.QueueSize = DefaultQueueSize
	}
	return nil
}
