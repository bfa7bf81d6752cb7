package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kassist/internal/adapters/driving/watcher"
	"github.com/custodia-labs/kassist/internal/connectors/filesystem"
)

var watchScan bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a folder",
	Long: `Watches a folder (recursively) and ingests every new .pdf, .md, .markdown,
.txt or .text file once it stops changing. Files that are already in the
knowledge base are left alone: edits and deletions are reported but not
applied.

Other kassist commands may ingest into the same data directory while this
runs; index updates wait on a shared lock file.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchScan, "scan", false, "also ingest files already in the folder")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	connector := filesystem.New(args[0])
	if err := connector.Validate(); err != nil {
		return err
	}
	defer connector.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(connector, documentService, watcher.Options{
		ScanExisting: watchScan,
		OnEvent: func(e watcher.Event) {
			if e.Err != nil {
				cmd.PrintErrf("Failed %s: %v\n", e.Path, e.Err)
				return
			}
			if e.Report != nil {
				cmd.Printf("Ingested %s: %d passages, %d indexed\n", e.Path, e.Report.Passages, e.Report.Indexed)
			}
		},
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", connector.Root())
	return w.Run(ctx)
}
