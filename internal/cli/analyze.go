package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/engine"
)

// errNotRecognized is returned with --strict when a file was not a
// recognized log.
var errNotRecognized = errors.New("one or more files were not recognized")

// errAnalyzeFailed is returned when a file could not be analyzed at all.
var errAnalyzeFailed = errors.New("one or more files could not be analyzed")

type analyzeOptions struct {
	downsample  int
	previewRows int
	series      bool
	strict      bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [files or patterns...]",
		Short: "Analyze log files",
		Long: `Analyze one or more log files and print a report for each.

Patterns are expanded with ** support, so "logs/**/*.csv" matches every CSV
below logs.

Examples:
  bmslog analyze pack1.csv
  bmslog analyze "logs/**/*.csv" --output json
  bmslog analyze run.csv --output json --series --downsample 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			return runAnalyze(ctx, cmd, svc, root.output, paths, opts)
		},
	}

	cmd.Flags().IntVar(&opts.downsample, "downsample", 1, "keep every Nth row in series and preview")
	cmd.Flags().IntVar(&opts.previewRows, "preview-rows", 0, "raw rows to include in JSON output (-1 for all)")
	cmd.Flags().BoolVar(&opts.series, "series", false, "include plot series in JSON output")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any file is not a recognized log")
	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, svc *core.Service, format string, paths []string, opts *analyzeOptions) error {
	files, err := readFiles(ctx, paths)
	if err != nil {
		return err
	}

	ctx = core.ContextWithSource(ctx, core.SourceCLI)
	results, err := svc.AnalyzeBatch(ctx, files)
	if err != nil {
		return err
	}

	reportOpts := core.ReportOptions{
		Downsample:  opts.downsample,
		PreviewRows: opts.previewRows,
		Series:      opts.series,
	}

	reports := make([]fileReport, len(results))
	var failed, unrecognized bool
	for i, res := range results {
		reports[i] = fileReport{Path: paths[i]}
		if res.Err != nil {
			failed = true
			msg := core.MapError(res.Err)
			reports[i].Error = &msg
			continue
		}
		r := core.BuildReport(res.Analysis, reportOpts)
		reports[i].Report = &r
		if r.Status != engine.StatusRecognized {
			unrecognized = true
		}
	}

	if err := writeReports(cmd.OutOrStdout(), format, reports); err != nil {
		return err
	}
	switch {
	case failed:
		return errAnalyzeFailed
	case opts.strict && unrecognized:
		return errNotRecognized
	}
	return nil
}

// expandPatterns resolves each argument as a doublestar glob. Arguments with
// no glob characters are kept as literal paths so a missing file is reported
// rather than silently skipped. Duplicates are dropped.
func expandPatterns(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			add(filepath.Clean(arg))
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

func hasMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// readFiles loads every path concurrently, keeping input order.
func readFiles(ctx context.Context, paths []string) ([]core.File, error) {
	files := make([]core.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			files[i] = core.File{Name: filepath.Base(p), Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
