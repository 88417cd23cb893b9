package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

var (
	searchLimit     int
	searchOwner     string
	searchTheme     string
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the document corpus",
	Long: `Performs semantic search across stored documents.
The query is embedded and compared against document embeddings; results
below the similarity threshold are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVar(&searchOwner, "owner", "", "scope the search to an owner")
	searchCmd.Flags().StringVar(&searchTheme, "theme", "", "scope the search to a topic collection")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", -1, "minimum similarity score (negative = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:     searchLimit,
		OwnerID:   searchOwner,
		ThemeID:   searchTheme,
		Threshold: searchThreshold,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.Candidate) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.Candidate) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		doc := results[i].Document

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, doc.DisplayTitle(), results[i].BestScore())
		if doc.Source != "" {
			cmd.Printf("      Source: %s\n", doc.Source)
		}
		if preview := contentPreview(doc.Content, 160); preview != "" {
			cmd.Printf("      %s\n", preview)
		}
		cmd.Println()
	}

	return nil
}

// contentPreview returns the first line of content shortened to at most
// max characters, cut at a word boundary.
func contentPreview(content string, max int) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if len(line) <= max {
		return line
	}
	cut := strings.LastIndexByte(line[:max], ' ')
	if cut <= 0 {
		cut = max
	}
	return line[:cut] + "..."
}
