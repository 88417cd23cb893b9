package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

var (
	ingestOwner string
	ingestTheme string
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or directory into the corpus",
	Long: `Reads a text or markdown file, splits it into chunks, embeds each
chunk and stores the result. Given a directory, every .txt and .md file
under it is ingested.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner to attribute the documents to")
	ingestCmd.Flags().StringVar(&ingestTheme, "theme", "", "topic collection to file the documents under")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if info.IsDir() {
		if ingestTitle != "" {
			return errors.New("--title applies to a single file, not a directory")
		}
		return ingestDirectory(cmd, path)
	}
	return ingestSingleFile(cmd, path)
}

func ingestSingleFile(cmd *cobra.Command, path string) error {
	req := driving.IngestRequest{
		OwnerID: ingestOwner,
		ThemeID: ingestTheme,
		Title:   ingestTitle,
	}

	result, err := ingestService.IngestFile(cmd.Context(), path, req)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	cmd.Printf("Ingested %s (%d chunks)\n", result.Title, result.ChunkCount)
	return nil
}

func ingestDirectory(cmd *cobra.Command, dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && ingestibleFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	if len(files) == 0 {
		cmd.Printf("No ingestible files found in %s\n", dir)
		return nil
	}

	var ingested, chunks, failed int
	for _, path := range files {
		req := driving.IngestRequest{
			OwnerID: ingestOwner,
			ThemeID: ingestTheme,
		}

		result, err := ingestService.IngestFile(cmd.Context(), path, req)
		if err != nil {
			cmd.PrintErrf("  failed: %s: %v\n", path, err)
			failed++
			continue
		}

		cmd.Printf("  %s (%d chunks)\n", result.Title, result.ChunkCount)
		ingested++
		chunks += result.ChunkCount
	}

	cmd.Printf("Ingested %d of %d files (%d chunks)\n", ingested, len(files), chunks)
	if ingested == 0 && failed > 0 {
		return fmt.Errorf("all %d files failed to ingest", failed)
	}
	return nil
}

func ingestibleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}
