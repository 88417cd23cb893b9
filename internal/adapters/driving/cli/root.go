// Package cli implements the ansa command tree. Commands run against
// services injected by the composition root; a command whose service is
// missing fails with a clear message instead of panicking.
package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Services the commands run against, wired by the composition root.
var (
	queryService      driving.QueryService
	searchService     driving.SearchService
	documentService   driving.DocumentService
	ingestService     driving.IngestService
	settingsService   driving.SettingsService
	configStore       driven.ConfigStore
	conversationStore driven.ConversationStore

	appLog *logrus.Logger
)

// verbose is the persistent --verbose flag.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ansa",
	Short: "Ask questions against your own documents",
	Long: `Ansa is a local-first retrieval-augmented answer engine.

Ingest text files into a searchable corpus, then ask questions against
it: ansa embeds the question, retrieves the most similar documents,
and generates an answer grounded in them, with sources cited.

Get started:
  ansa config embedding     configure an embedding provider
  ansa config llm           configure an LLM provider
  ansa ingest ./notes       ingest a directory of text files
  ansa ask "a question"     ask against the corpus`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose && appLog != nil {
			appLog.SetLevel(logrus.DebugLevel)
		}
	},
}

// versionCmd reports the stamped build version. Kept as a subcommand
// rather than a --version flag so "ansa version" works in scripts.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("ansa version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

// Services bundles everything the command tree drives.
type Services struct {
	Query        driving.QueryService
	Search       driving.SearchService
	Document     driving.DocumentService
	Ingest       driving.IngestService
	Settings     driving.SettingsService
	Config       driven.ConfigStore
	Conversation driven.ConversationStore
}

// SetServices wires the services the commands run against.
func SetServices(s Services) {
	queryService = s.Query
	searchService = s.Search
	documentService = s.Document
	ingestService = s.Ingest
	settingsService = s.Settings
	configStore = s.Config
	conversationStore = s.Conversation
}

// SetLogger attaches the application logger so the --verbose flag can
// drop its level to debug.
func SetLogger(log *logrus.Logger) {
	appLog = log
}

// SetVersion records the build version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command tree. The context bounds long-running
// commands such as mcp and watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
