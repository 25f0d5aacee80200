// Package cli implements the bmslog command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bmsview/internal/config"
	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	output   string
	logLevel string
}

// NewRootCmd builds the bmslog command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bmslog",
		Short: "Classify and parse battery management system logs",
		Long: `bmslog reads BMS data and error logs, finds their header, parses the
table and reports derived power, cell spread, status flags and error counts.

Settings such as INGEST_MAX_FILE_SIZE and INGEST_MAX_CONCURRENT are read from
the environment, the same as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", opts.output)
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newAnalyzeCmd(opts), newIngestCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds an analysis service from the environment. The command
// line never persists history.
func newService() (*core.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts := core.OptionsFromConfig(cfg)
	opts.MaxBatchFiles = 0
	opts.Timeout = 0
	return core.NewService(opts, nil, nil)
}

// writeReports renders reports in the selected format.
func writeReports(w io.Writer, format string, reports []fileReport) error {
	if format == "json" {
		return writeJSON(w, reports)
	}
	for _, r := range reports {
		if err := writeText(w, r); err != nil {
			return err
		}
	}
	return nil
}
