package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

var (
	documentOwner string
	documentTheme string
)

// showContent is a flag for the show command.
var showContent bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List, view, delete, or count documents in the corpus.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentCount,
}

func init() {
	documentCmd.PersistentFlags().StringVar(&documentOwner, "owner", "", "scope to an owner")
	documentCmd.PersistentFlags().StringVar(&documentTheme, "theme", "", "scope to a topic collection")
	documentShowCmd.Flags().BoolVar(&showContent, "content", false, "print the full document content")

	for _, sub := range []*cobra.Command{documentListCmd, documentShowCmd, documentDeleteCmd, documentCountCmd} {
		documentCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), documentOwner, documentTheme)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].DisplayTitle())
		if docs[i].Source != "" {
			cmd.Printf("    Source: %s\n", docs[i].Source)
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

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.DisplayTitle())
	if doc.OwnerID != "" {
		cmd.Printf("  Owner:    %s\n", doc.OwnerID)
	}
	if doc.ThemeID != "" {
		cmd.Printf("  Theme:    %s\n", doc.ThemeID)
	}
	if doc.Source != "" {
		cmd.Printf("  Source:   %s\n", doc.Source)
	}
	cmd.Printf("  Embedded: %t\n", doc.HasEmbedding())
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if len(doc.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		for k, v := range doc.Metadata {
			cmd.Printf("    %s: %s\n", k, v)
		}
	}

	if showContent {
		cmd.Println()
		cmd.Println(doc.Content)
	} else if preview := contentPreview(doc.Content, 160); preview != "" {
		cmd.Printf("\n  %s\n", preview)
	}

	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	if err := documentService.Delete(cmd.Context(), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentCount(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	count, err := documentService.Count(cmd.Context(), domain.CountCriteria{
		OwnerID: documentOwner,
		ThemeID: documentTheme,
	})
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	cmd.Printf("%d documents\n", count)
	return nil
}
