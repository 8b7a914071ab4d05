package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

var logger = logging.Get("walker")

// progressInterval throttles OnProgress.
const progressInterval = 50 * time.Millisecond

type job struct {
	path    string
	relPath string
	size    int64
	modTime time.Time
}

// Walker digests a directory tree. A Walker is single use.
type Walker struct {
	opts Options
	root string

	dirsWalked  atomic.Int64
	filesHashed atomic.Int64
	bytesHashed atomic.Int64
	cacheHits   atomic.Int64
	errorCount  atomic.Int64

	currentPath  atomic.Value
	lastProgress atomic.Int64

	mu     sync.Mutex
	files  []types.FileDigest
	errors []types.WalkError
}

// New returns a Walker for opts.
func New(opts Options) (*Walker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	w := &Walker{opts: opts}
	w.currentPath.Store("")
	return w, nil
}

// Walk traverses the root and digests every regular file. Unreadable files
// are recorded in the result's Errors and the walk continues. Symlinks are
// not followed. A cancelled context abandons the walk and returns its
// error with no result.
func (w *Walker) Walk(ctx context.Context) (*types.WalkResult, error) {
	start := time.Now()

	root, err := resolveRoot(w.opts.Root)
	if err != nil {
		return nil, err
	}
	w.root = root
	w.currentPath.Store(root)
	w.reportProgressForce()

	logger.Info("walk started",
		"root", root,
		"algorithms", w.opts.Engine.Algorithms(),
		"hash_workers", w.opts.HashWorkers,
		"cache", w.opts.Cache != nil,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, w.opts.QueueSize)
	var wg sync.WaitGroup
	for i := 0; i < w.opts.HashWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				w.hash(j)
			}
		}()
	}

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.opts.WalkWorkers,
	}
	walkErr := fastwalk.Walk(&conf, root, w.visit(ctx, jobs))

	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("walk cancelled", "root", root, "error", err)
		return nil, err
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	if w.opts.Cache != nil {
		if err := w.opts.Cache.Flush(); err != nil {
			logger.Warn("cache flush failed", "error", err)
		}
	}

	sort.Slice(w.files, func(i, j int) bool { return w.files[i].RelPath < w.files[j].RelPath })
	sort.Slice(w.errors, func(i, j int) bool { return w.errors[i].Path < w.errors[j].Path })

	res := &types.WalkResult{
		Root:        root,
		Files:       w.files,
		DirsWalked:  w.dirsWalked.Load(),
		BytesHashed: w.bytesHashed.Load(),
		CacheHits:   w.cacheHits.Load(),
		Elapsed:     time.Since(start),
		Errors:      w.errors,
	}
	w.reportProgressForce()

	logger.Info("walk finished",
		"root", root,
		"files", len(res.Files),
		"errors", len(res.Errors),
		"cache_hits", res.CacheHits,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func resolveRoot(path string) (string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", root, errNotDir)
	}
	return root, nil
}

var errNotDir = errors.New("not a directory")

func (w *Walker) visit(ctx context.Context, jobs chan<- job) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}

		if err != nil {
			w.addError(path, err)
			return nil
		}

		if path != w.root && isExcluded(path, w.opts.Exclude) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			w.dirsWalked.Add(1)
			w.currentPath.Store(path)
			w.reportProgress()
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.addError(path, err)
			return nil
		}

		j := job{
			path:    path,
			relPath: w.relPath(path),
			size:    info.Size(),
			modTime: info.ModTime(),
		}
		select {
		case jobs <- j:
		case <-ctx.Done():
			return fastwalk.ErrSkipFiles
		}
		return nil
	}
}

func (w *Walker) hash(j job) {
	algorithms := w.opts.Engine.Algorithms()

	fd := types.FileDigest{
		Path:    j.path,
		RelPath: j.relPath,
		Size:    j.size,
		ModTime: j.modTime,
	}

	if w.opts.Cache != nil {
		if digests, ok := w.opts.Cache.Lookup(w.root, j.relPath, j.size, j.modTime, algorithms); ok {
			fd.Digests = digests
			fd.Cached = true
			w.cacheHits.Add(1)
		}
	}

	if fd.Digests == nil {
		res, err := w.opts.Engine.ComputeFile(j.path)
		if err != nil {
			w.addError(j.path, err)
			return
		}
		fd.Digests = res
		w.bytesHashed.Add(j.size)

		if w.opts.Cache != nil {
			w.opts.Cache.Record(w.root, j.relPath, j.size, j.modTime, res)
		}
	}

	w.filesHashed.Add(1)
	w.currentPath.Store(j.path)

	w.mu.Lock()
	w.files = append(w.files, fd)
	w.mu.Unlock()

	if w.opts.OnFile != nil {
		w.opts.OnFile(fd)
	}
	w.reportProgress()
}

// relPath returns path relative to the root with '/' separators.
func (w *Walker) relPath(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Walker) addError(path string, err error) {
	w.errorCount.Add(1)
	logger.Warn("skipping unreadable path", "path", path, "error", err)

	w.mu.Lock()
	w.errors = append(w.errors, types.WalkError{Path: path, Error: err.Error()})
	w.mu.Unlock()
}

func (w *Walker) reportProgress() {
	if w.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixNano()
	last := w.lastProgress.Load()
	if now-last < int64(progressInterval) {
		return
	}
	if !w.lastProgress.CompareAndSwap(last, now) {
		return
	}
	w.sendProgress()
}

func (w *Walker) reportProgressForce() {
	if w.opts.OnProgress == nil {
		return
	}
	w.lastProgress.Store(time.Now().UnixNano())
	w.sendProgress()
}

func (w *Walker) sendProgress() {
	current, _ := w.currentPath.Load().(string)

	w.opts.OnProgress(types.WalkProgress{
		DirsWalked:  w.dirsWalked.Load(),
		FilesHashed: w.filesHashed.Load(),
		BytesHashed: w.bytesHashed.Load(),
		CacheHits:   w.cacheHits.Load(),
		Errors:      w.errorCount.Load(),
		CurrentPath: current,
	})
}

// isExcluded reports whether path equals or sits under a pattern used as a
// path prefix, or matches a pattern as a glob on its basename or full path.
func isExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if path == pattern || (len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator)) {
			return true
		}
		if ok, err := filepath.Match(pattern, filepath.Base(path)); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
