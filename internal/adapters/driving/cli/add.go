package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

var (
	addOwner  string
	addTheme  string
	addTitle  string
	addSource string
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a snippet of text to the corpus",
	Long: `Stores a piece of text directly, without reading a file.
Useful for quick notes and for piping content from other tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addOwner, "owner", "", "owner to attribute the document to")
	addCmd.Flags().StringVar(&addTheme, "theme", "", "topic collection to file the document under")
	addCmd.Flags().StringVar(&addTitle, "title", "", "document title")
	addCmd.Flags().StringVar(&addSource, "source", "", "origin to record for the document")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	req := driving.IngestRequest{
		OwnerID: addOwner,
		ThemeID: addTheme,
		Title:   addTitle,
		Source:  addSource,
		Content: args[0],
	}

	result, err := ingestService.IngestText(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to add text: %w", err)
	}

	cmd.Printf("Added %s (%d chunks)\n", result.Title, result.ChunkCount)
	return nil
}
