package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain the vector index",
	Long: `Check and repair the vector index and its identifier map.

The index and the map are written as a pair after every ingestion. If a
write is interrupted they can disagree, and chunks can end up stored but
unindexed. 'verify' reports this; 'rebuild' recreates both files from the
embeddings kept with each chunk, without calling the embedding model.`,
}

var indexVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the index against the chunk store",
	Args:  cobra.NoArgs,
	RunE:  runIndexVerify,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recreate the index from stored embeddings",
	Args:  cobra.NoArgs,
	RunE:  runIndexRebuild,
}

func init() {
	indexCmd.AddCommand(indexVerifyCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexVerify(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	report, err := indexService.Verify(cmd.Context())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	printIndexReport(cmd, report)

	if !report.Exists {
		return nil
	}
	if !report.Consistent() {
		return fmt.Errorf("%w: run 'kassist index rebuild'", domain.ErrIndexInconsistency)
	}
	if report.Orphans > 0 {
		cmd.Printf("\n%d chunks are not indexed. Run 'kassist index rebuild' to recover them.\n", report.Orphans)
		return nil
	}
	cmd.Println("\nIndex is consistent.")
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	report, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Println("Index rebuilt.")
	printIndexReport(cmd, report)
	if report.Orphans > 0 {
		cmd.Printf("\n%d chunks were skipped because their embeddings do not match the index.\n", report.Orphans)
	}
	return nil
}

func printIndexReport(cmd *cobra.Command, report *domain.IndexReport) {
	if !report.Exists {
		cmd.Printf("No index yet. %d chunks stored.\n", report.Chunks)
		return
	}
	cmd.Printf("  Model:       %s\n", report.Model)
	cmd.Printf("  Dimension:   %d\n", report.Dimension)
	cmd.Printf("  Index:       %d vectors (generation %d)\n", report.IndexLen, report.IndexGeneration)
	cmd.Printf("  Map:         %d entries (generation %d)\n", report.MapLen, report.MapGeneration)
	cmd.Printf("  Chunks:      %d\n", report.Chunks)
	cmd.Printf("  Unresolved:  %d\n", report.Unresolved)
	cmd.Printf("  Orphans:     %d\n", report.Orphans)
}
