package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fixity/pkg/fixity/loader"
	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
	"github.com/jamesainslie/fixity/pkg/fixity/walker"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate DIR",
	Short: "Write a checksum inventory of a directory tree",
	Long: `Generate digests every regular file under DIR and writes a text inventory
with one "checksum,path" line per file (or "path,checksum" with
--layout filename-first). Paths are relative to DIR.

The inventory is keyed by --algorithm (default cksum). Unchanged files are
served from the digest cache unless --no-cache is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "", "write the inventory to this file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := loaderOptions(cfg)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, []string{cfg.Algorithm})
	if err != nil {
		return err
	}
	algorithm := eng.Algorithms()[0]

	ctx, cancel := signalContext()
	defer cancel()

	printInfo("Digesting %s with %s...", args[0], algorithm)
	res, err := walkTree(ctx, cfg, args[0], eng)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			printInfo("Interrupted")
		}
		return err
	}

	m, err := walker.Manifest(res, algorithm)
	if err != nil {
		return err
	}

	if err := writeInventory(cmd.OutOrStdout(), generateOut, m, opts.Layout); err != nil {
		return err
	}

	logger.Info("inventory generated",
		"root", res.Root,
		"algorithm", algorithm,
		"files", len(res.Files),
		"errors", len(res.Errors),
	)
	printInfo("%d files, %d skipped", len(res.Files), len(res.Errors))
	return nil
}

// writeInventory writes m to path, or to stdout when path is empty.
func writeInventory(stdout io.Writer, path string, m *manifest.Manifest, layout loader.Layout) error {
	if path == "" {
		if err := loader.WriteText(stdout, m, layout); err != nil {
			return fmt.Errorf("writing inventory: %w", err)
		}
		return nil
	}

	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := loader.WriteText(f, m, layout); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing inventory: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}

	printVerbose("Inventory written to %s", path)
	return nil
}
