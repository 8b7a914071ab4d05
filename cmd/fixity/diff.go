package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fixity/pkg/fixity/config"
	"github.com/jamesainslie/fixity/pkg/fixity/digest"
	"github.com/jamesainslie/fixity/pkg/fixity/loader"
	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
	"github.com/jamesainslie/fixity/pkg/fixity/report"
	"github.com/jamesainslie/fixity/pkg/fixity/walker"
)

var diffCmd = &cobra.Command{
	Use:   "diff A B",
	Short: "Report files held by one inventory and not the other",
	Long: `Diff reconciles two inventories and reports what is left on each side.

Each of A and B is an inventory file or a directory. Files ending in .xml are
read as crawler reports, anything else as checksum text. A directory is
digested with --algorithm (default cksum) and its files are named by their
path relative to the directory.

Entries with the same checksum cancel when their file base names are equal
ignoring case, or when neither has a name.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

// input is one loaded side of a comparison.
type input struct {
	path      string
	manifest  *manifest.Manifest
	entries   int
	checksums int
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()

	l := &inputLoader{cfg: cfg}
	a, err := l.load(ctx, args[0])
	if err != nil {
		return err
	}
	b, err := l.load(ctx, args[1])
	if err != nil {
		return err
	}

	printInfo("Reconciling %s (%d entries) with %s (%d entries)...", a.path, a.entries, b.path, b.entries)
	stats := manifest.Reconcile(a.manifest, b.manifest)

	labelA, labelB := sideLabels(a.path, b.path)
	res := report.NewResult(
		report.NewSide(labelA, a.path, a.manifest, a.entries, a.checksums),
		report.NewSide(labelB, b.path, b.manifest, b.entries, b.checksums),
		stats,
	)
	res.Algorithm = l.algorithm
	res.Elapsed = time.Since(start)

	logger.Info("diff finished",
		"run_id", res.RunID,
		"a", a.path,
		"b", b.path,
		"matched", stats.Matched,
		"unique_a", res.A.UniqueFiles(),
		"unique_b", res.B.UniqueFiles(),
	)

	return writeReport(cmd, cfg, res)
}

// sideLabels returns the base names of a and b, or the paths as given when
// the base names collide.
func sideLabels(a, b string) (string, string) {
	labelA, labelB := filepath.Base(a), filepath.Base(b)
	if labelA == labelB {
		return a, b
	}
	return labelA, labelB
}

// writeReport renders res to stdout and, if configured, to the report file.
// The file never gets terminal styling.
func writeReport(cmd *cobra.Command, cfg *config.Config, res *report.Result) error {
	format := cfg.Report.Format
	if format == "" {
		format = config.DefaultReportFormat
	}
	if err := report.Write(cmd.OutOrStdout(), format, res); err != nil {
		return fmt.Errorf("%w (available formats: %v)", err, report.Available())
	}

	if cfg.Report.Path == "" {
		return nil
	}

	fileFormat := format
	if fileFormat == "pretty" {
		fileFormat = "plain"
	}

	f, err := createOutput(cfg.Report.Path)
	if err != nil {
		return err
	}
	if err := report.Write(f, fileFormat, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printVerbose("Report written to %s", cfg.Report.Path)
	return nil
}

// inputLoader loads diff inputs, sharing one engine across directory
// inputs.
type inputLoader struct {
	cfg       *config.Config
	engine    *digest.Engine
	algorithm string
}

func (l *inputLoader) load(ctx context.Context, path string) (*input, error) {
	dir, err := isDir(path)
	if err != nil {
		return nil, err
	}

	var m *manifest.Manifest
	if dir {
		m, err = l.walk(ctx, path)
	} else {
		m, err = l.file(path)
	}
	if err != nil {
		return nil, err
	}

	return &input{
		path:      path,
		manifest:  m,
		entries:   m.Size(),
		checksums: m.Len(),
	}, nil
}

func (l *inputLoader) file(path string) (*manifest.Manifest, error) {
	opts, err := loaderOptions(l.cfg)
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path, opts)
}

func (l *inputLoader) walk(ctx context.Context, root string) (*manifest.Manifest, error) {
	if l.engine == nil {
		eng, err := newEngine(l.cfg, []string{l.cfg.Algorithm})
		if err != nil {
			return nil, err
		}
		l.engine = eng
		l.algorithm = eng.Algorithms()[0]
	}

	printInfo("Digesting %s with %s...", root, l.algorithm)
	res, err := walkTree(ctx, l.cfg, root, l.engine)
	if err != nil {
		return nil, err
	}
	return walker.Manifest(res, l.algorithm)
}
