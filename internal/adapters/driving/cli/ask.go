package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui"
	"github.com/custodia-labs/ansa/internal/core/domain"
)

var (
	askInteractive  bool
	askOwner        string
	askTheme        string
	askConversation string
	askTopK         int
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the document corpus",
	Long: `Answers a question using retrieval-augmented generation.

The question is embedded, similar documents are retrieved and reranked,
and an answer is generated grounded in the best matches. Every answer
cites the documents it drew on.

Run with --interactive for a chat session that keeps conversation
context across questions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "start an interactive chat session")
	askCmd.Flags().StringVar(&askOwner, "owner", "", "scope retrieval to an owner")
	askCmd.Flags().StringVar(&askTheme, "theme", "", "scope retrieval to a topic collection")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "conversation ID for follow-up questions")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of documents to ground the answer on (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askInteractive {
		return runAskSession(cmd)
	}
	if len(args) == 0 {
		return errors.New("a question is required unless --interactive is set")
	}
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer := queryService.Answer(cmd.Context(), domain.QueryRequest{
		Question:       args[0],
		OwnerID:        askOwner,
		ThemeID:        askTheme,
		ConversationID: askConversation,
		TopK:           askTopK,
	})

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswer(cmd, answer)
}

// runAskSession launches the interactive chat TUI.
func runAskSession(cmd *cobra.Command) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	// Panic recovery keeps a stack trace visible after the alternate
	// screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat session: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Query:    queryService,
		Document: documentService,
		Settings: settingsService,
	}
	app, err := tui.NewApp(ports, tui.Options{
		OwnerID: askOwner,
		ThemeID: askTheme,
		TopK:    askTopK,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session error: %w", err)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer) error {
	cmd.Println(answer.Response)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Score)
			if src.Source != "" {
				cmd.Printf("      %s\n", src.Source)
			}
			if src.Snippet != "" {
				cmd.Printf("      %s\n", src.Snippet)
			}
		}
	}

	// A degraded answer still prints its response, but the command
	// should fail so scripts notice.
	if answer.Meta.Error != "" {
		return fmt.Errorf("query failed: %s", answer.Meta.Error)
	}
	return nil
}
