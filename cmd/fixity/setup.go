package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/jamesainslie/fixity/pkg/fixity/cache"
	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/digest"
	"github.com/jamesainslie/fixity/pkg/fixity/loader"
	"github.com/jamesainslie/fixity/pkg/fixity/tuner"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
	"github.com/jamesainslie/fixity/pkg/fixity/walker"
)

// newEngine builds a digest engine for names using the configured read
// size. No names selects the engine defaults.
func newEngine(cfg *config.Config, names []string) (*digest.Engine, error) {
	size, err := cfg.BufferBytes()
	if err != nil {
		return nil, err
	}
	return digest.NewEngine(digest.NewRegistry(), names, digest.WithBufferSize(size))
}

// loaderOptions converts the loader settings.
func loaderOptions(cfg *config.Config) (loader.Options, error) {
	layout, err := loader.ParseLayout(cfg.Loader.Layout)
	if err != nil {
		return loader.Options{}, err
	}

	opts := loader.DefaultOptions()
	opts.Layout = layout
	opts.Normalize = cfg.Loader.NormalizeCase
	if cfg.Loader.XMLDigestPrefix != "" {
		opts.XMLDigestPrefix = cfg.Loader.XMLDigestPrefix
	}
	return opts, nil
}

// openCache opens the digest cache unless it is disabled. A cache that
// cannot be opened is logged and skipped.
func openCache(cfg *config.Config) *cache.Cache {
	if !cfg.Cache.Enabled || viper.GetBool("no_cache") {
		return nil
	}

	path := cfg.Cache.Path
	if path == "" {
		path = config.DefaultCachePath()
	}

	c, err := cache.Open(path)
	if err != nil {
		logger.Warn("digest cache unavailable", "path", path, "error", err)
		printVerbose("digest cache unavailable: %v", err)
		return nil
	}
	return c
}

// walkPlan sizes the walker for this host.
func walkPlan(cfg *config.Config) tuner.Plan {
	res, err := tuner.Detect()
	if err != nil {
		logger.Warn("resource detection failed, using defaults", "error", err)
	}
	plan := tuner.CalculateWithOverride(res, cfg.Workers)

	printVerbose("Workers: walk=%d hash=%d queue=%d", plan.WalkWorkers, plan.HashWorkers, plan.QueueSize)
	return plan
}

// walkTree digests every file under root with eng.
func walkTree(ctx context.Context, cfg *config.Config, root string, eng *digest.Engine) (*types.WalkResult, error) {
	plan := walkPlan(cfg)

	c := openCache(cfg)
	if c != nil {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("closing digest cache", "error", err)
			}
		}()
	}

	w, err := walker.New(walker.Options{
		Root:        root,
		Exclude:     cfg.Exclude,
		Engine:      eng,
		WalkWorkers: plan.WalkWorkers,
		HashWorkers: plan.HashWorkers,
		QueueSize:   plan.QueueSize,
		Cache:       c,
	})
	if err != nil {
		return nil, err
	}

	res, err := w.Walk(ctx)
	if err != nil {
		return nil, err
	}

	printVerbose("Walked %s: %d files, %s hashed, %d cached, %d errors in %s",
		res.Root, len(res.Files), types.FormatSize(res.BytesHashed), res.CacheHits, len(res.Errors), res.Elapsed)
	for _, e := range res.Errors {
		printInfo("skipped %s: %s", e.Path, e.Error)
	}
	return res, nil
}

// isDir reports whether path names an existing directory.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// createOutput opens path for writing, creating parent directories.
func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}
