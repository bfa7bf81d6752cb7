package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Inspect ingested documents",
	Long:    `List ingested documents and view their text and passages.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

// showChunks is a flag for the show command.
var showChunks bool

func init() {
	documentShowCmd.Flags().BoolVarP(&showChunks, "chunks", "c", false, "print every passage")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentContentCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents yet. Add some with 'kassist ingest <path>'.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Kind: %s\n", docs[i].Kind)
		if docs[i].URI != "" {
			cmd.Printf("    URI: %s\n", docs[i].URI)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := cmd.Context()

	doc, err := documentService.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	chunks, err := documentService.Chunks(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Kind:     %s\n", doc.Kind)
	cmd.Printf("  URI:      %s\n", doc.URI)
	cmd.Printf("  Pages:    %d\n", len(doc.Pages()))
	cmd.Printf("  Chunks:   %d\n", len(chunks))
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format(timeLayout))

	if showChunks {
		cmd.Println()
		for i := range chunks {
			cmd.Printf("[%d] Page %d\n%s\n\n", chunks[i].Position, chunks[i].PageNumber, chunks[i].Content)
		}
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(doc.Content)
	return nil
}
