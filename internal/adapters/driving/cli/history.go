package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	entries, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No questions answered yet.")
		return nil
	}

	for i := range entries {
		cmd.Printf("[%s] %s\n", entries[i].CreatedAt.Format(timeLayout), entries[i].Question)
		cmd.Printf("  %s\n", entries[i].Answer)
		if entries[i].Sources != "" {
			cmd.Printf("  Sources: %s\n", entries[i].Sources)
		}
		cmd.Println()
	}
	return nil
}
