package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/watcher"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var (
		watch  bool
		settle time.Duration
	)
	cmd := &cobra.Command{
		Use:   "ingest DIR",
		Short: "Analyze every log in a directory and move it aside",
		Long: `Analyze every regular file in DIR and move each analyzed file into
its processed subdirectory (WATCH_PROCESSED_DIR, default Processed).

With --watch the command keeps running and analyzes files as they arrive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = core.ContextWithSource(ctx, core.SourceCLI)

			svc, err := newService()
			if err != nil {
				return err
			}

			dir := args[0]
			if watch {
				w, err := watcher.New(dir, settle, svc)
				if err != nil {
					return err
				}
				return w.Run(ctx)
			}

			results, err := svc.IngestDir(ctx, dir)
			if err != nil {
				return err
			}

			reports := make([]fileReport, len(results))
			var failed bool
			for i, res := range results {
				reports[i] = fileReport{Path: filepath.Join(dir, res.FileName)}
				if res.Err != nil {
					failed = true
					msg := core.MapError(res.Err)
					reports[i].Error = &msg
					continue
				}
				r := core.BuildReport(res.Analysis, core.ReportOptions{})
				reports[i].Report = &r
			}
			if err := writeReports(cmd.OutOrStdout(), root.output, reports); err != nil {
				return err
			}
			if failed {
				return errAnalyzeFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and analyze new files as they arrive")
	cmd.Flags().DurationVar(&settle, "settle", watcher.DefaultSettleDelay, "how long a new file must stay unchanged before analysis")
	return cmd
}
