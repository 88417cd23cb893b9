package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/adapters/driving/watch"
)

var (
	watchOwner    string
	watchTheme    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and keep it ingested",
	Long: `Watches a directory for changes to .txt and .md files. New and
modified files are re-ingested; deleted files have their documents
removed. The directory is synced once on startup, so edits made while
the watcher was down are picked up too.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOwner, "owner", "", "owner to attribute ingested documents to")
	watchCmd.Flags().StringVar(&watchTheme, "theme", "", "topic collection to file ingested documents under")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "delay before ingesting after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	watcher, err := watch.New(ingestService, documentService, watch.Config{
		Dir:      args[0],
		OwnerID:  watchOwner,
		ThemeID:  watchTheme,
		Debounce: watchDebounce,
	}, appLog)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watcher.Run(cmd.Context())
}
