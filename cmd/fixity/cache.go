package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fixity/pkg/fixity/cache"
	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the digest cache",
	Long: `Commands for managing the digest cache.

The cache remembers file digests so repeat runs over the same tree only hash
files whose size or modification time changed. Cache data is stored in the
XDG cache directory (typically ~/.cache/fixity/digests).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [DIR]",
	Short: "Clear cached digests",
	Long:  `Removes cached digests for DIR, or for every tree when DIR is omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune [DIR]",
	Short: "Drop cached digests of deleted files",
	Long:  `Removes cached digests whose file no longer exists, under DIR or everywhere.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCachePrune,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, size on disk and number of entries.`,
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cachePath(cfg))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cachePath(cfg *config.Config) string {
	if cfg.Cache.Path != "" {
		return cfg.Cache.Path
	}
	return config.DefaultCachePath()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cachePath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		printInfo("Cache is already empty.")
		return nil
	}

	c, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	var n int
	if len(args) == 1 {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		n, err = c.Clear(root)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	} else {
		n, err = c.ClearAll()
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	printInfo("Removed %d cached entries.", n)
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cachePath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		printInfo("Cache is empty.")
		return nil
	}

	root := ""
	if len(args) == 1 {
		if root, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}

	c, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	n, err := c.Prune(root)
	if err != nil {
		return err
	}
	printInfo("Removed %d stale entries.", n)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path := cachePath(cfg)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "Cache: empty (no cache directory)")
		fmt.Fprintf(out, "Cache location: %s\n", path)
		return nil
	}

	var size int64
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	c, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	entries, err := c.Len()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	fmt.Fprintf(out, "Cache location: %s\n", path)
	fmt.Fprintf(out, "Cache size: %s\n", types.FormatSize(size))
	fmt.Fprintf(out, "Cache entries: %d\n", entries)
	return nil
}
