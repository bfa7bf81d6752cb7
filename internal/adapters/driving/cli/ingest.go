package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kassist/internal/connectors/filesystem"
	"github.com/custodia-labs/kassist/internal/core/domain"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Add documents to the knowledge base",
	Long: `Reads each file, splits it into passages, embeds them and appends them to
the index. Directories are scanned recursively for .pdf, .md, .markdown,
.txt and .text files; hidden files are skipped.

Every run creates new documents. Ingesting the same file twice stores it twice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "title for the document (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	paths, err := expandPaths(cmd, args)
	if err != nil {
		return err
	}
	if ingestTitle != "" && len(paths) != 1 {
		return fmt.Errorf("%w: --title needs exactly one file, got %d", domain.ErrInvalidInput, len(paths))
	}

	var failed int
	for _, path := range paths {
		if err := ingestFile(cmd, path); err != nil {
			cmd.PrintErrf("Failed %s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, path string) error {
	raw, err := filesystem.ReadFile(path)
	if err != nil {
		return err
	}
	if ingestTitle != "" {
		raw.Title = ingestTitle
	}

	doc, report, err := documentService.Submit(cmd.Context(), raw)
	if err != nil {
		return err
	}

	cmd.Printf("Ingested %s (%s)\n", doc.Reference(), doc.ID)
	if report != nil {
		cmd.Printf("  Passages: %d  Indexed: %d  Skipped: %d\n", report.Passages, report.Indexed, report.Skipped)
		if report.Orphaned > 0 {
			cmd.Printf("  Warning: %d chunks are stored but not indexed. Run 'kassist index rebuild'.\n", report.Orphaned)
		}
	}
	return nil
}

// expandPaths replaces directories with the supported files below them.
func expandPaths(cmd *cobra.Command, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := filesystem.New(arg).Scan(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		if len(found) == 0 {
			cmd.Printf("No supported files in %s\n", arg)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
