package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fixity/pkg/fixity/digest"
)

var errDigestFailed = errors.New("some files could not be digested")

var digestCmd = &cobra.Command{
	Use:   "digest FILE...",
	Short: "Print every configured digest of files",
	Long: `Digest reads each file once and prints every configured algorithm.

Unreadable files are reported and skipped; the command exits non-zero if any
file failed. The algorithm set comes from --algorithms or the algorithms
config key.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, cfg.Algorithms)
	if err != nil {
		return err
	}

	if failed := digestFiles(cmd.OutOrStdout(), eng, args); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDigestFailed, failed, len(args))
	}
	return nil
}

// digestFiles prints a block per file and returns how many failed.
func digestFiles(w io.Writer, eng *digest.Engine, paths []string) int {
	failed := 0
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}

		res, err := eng.ComputeFile(abs)
		if err != nil {
			failed++
			logger.Warn("digest failed", "path", abs, "error", err)
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}

		fmt.Fprintf(w, "File: %s\n", abs)
		for _, name := range res.Names() {
			fmt.Fprintf(w, "%s: %s\n", name, res[name])
		}
	}
	return failed
}
