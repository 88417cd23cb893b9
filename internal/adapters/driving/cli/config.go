package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long: `View and configure AI providers, reranking, storage, and other options.

Use subcommands to configure specific settings or edit single keys directly.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single configuration value",
	Long: `Sets one configuration key directly. Values are stored as booleans,
integers or floats when they parse as such, and as strings otherwise.

Example: ansa config set query.top_k 8`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [embedding|llm]",
	Short: "Set an API key without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetKey,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for semantic retrieval.`,
	RunE:  runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for answer generation.`,
	RunE:  runConfigLLM,
}

var configRerankCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Configure reranking",
	Long:  `Select how retrieved candidates are reordered before answering.`,
	RunE:  runConfigRerank,
}

var configRepositoryCmd = &cobra.Command{
	Use:   "repository",
	Short: "Configure document storage",
	Long:  `Select the document repository backend.`,
	RunE:  runConfigRepository,
}

func init() {
	for _, sub := range []*cobra.Command{
		configShowCmd, configGetCmd, configSetCmd, configSetKeyCmd, configPathCmd,
		configEmbeddingCmd, configLLMCmd, configRerankCmd, configRepositoryCmd,
	} {
		configCmd.AddCommand(sub)
	}
	rootCmd.AddCommand(configCmd)
}

// providerView is the printable slice of one AI provider's settings.
// The embedding and LLM blocks of `config show` render identically.
type providerView struct {
	header     string
	provider   domain.AIProvider
	model      string
	baseURL    string
	apiKey     string
	configured bool
}

func (v providerView) print(cmd *cobra.Command) {
	cmd.Printf("[%s]\n", v.header)
	cmd.Printf("  Provider: %s\n", v.provider.Description())
	cmd.Printf("  Model: %s\n", v.model)
	if v.provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", v.baseURL)
	}
	if v.provider.RequiresAPIKey() {
		key := "(not set)"
		if v.apiKey != "" {
			key = maskAPIKey(v.apiKey)
		}
		cmd.Printf("  API Key: %s\n", key)
	}
	status := "configured"
	if !v.configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	e, l := settings.Embedding, settings.LLM
	providerView{"Embedding", e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured()}.print(cmd)
	providerView{"LLM", l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured()}.print(cmd)

	cmd.Println("[Rerank]")
	cmd.Printf("  Strategy: %s\n", settings.Rerank.Kind.Description())
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Repository: %s\n", settings.Storage.Repository.Description())
	switch settings.Storage.Repository {
	case domain.RepositorySQLite:
		if settings.Storage.SQLitePath != "" {
			cmd.Printf("  Database: %s\n", settings.Storage.SQLitePath)
		}
	case domain.RepositoryChroma:
		cmd.Printf("  Chroma URL: %s\n", settings.Storage.ChromaURL)
		cmd.Printf("  Collection: %s\n", settings.Storage.ChromaCollection)
	}
	cmd.Println()

	cmd.Println("[Query]")
	cmd.Printf("  Top-K: %d\n", settings.Query.TopK)
	cmd.Printf("  Score threshold: %.2f\n", settings.Query.ScoreThreshold)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Mode: %s\n", settings.Chunking.Mode.Description())
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ansa config embedding' and 'ansa config llm' to finish setup.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("key %s is not set", key)
	}

	// API keys are printed masked; use set-key to change them.
	if strings.HasSuffix(key, "api_key") {
		cmd.Println(maskAPIKey(fmt.Sprint(value)))
		return nil
	}

	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if strings.HasSuffix(key, "api_key") {
		return errors.New("use 'ansa config set-key' to set API keys")
	}

	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

// apiKeyTargets maps set-key arguments to their config keys.
var apiKeyTargets = map[string]string{
	"embedding": "embedding.api_key",
	"llm":       "llm.api_key",
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, ok := apiKeyTargets[args[0]]
	if !ok {
		return fmt.Errorf("unknown target %q (expected embedding or llm)", args[0])
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key must not be empty")
	}

	if err := configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	cmd.Printf("API key stored for %s provider.\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println(configStore.Path())
	return nil
}

// providerWizard drives the interactive configure flow. Embedding and
// LLM run the same steps and differ only in the provider list and
// which settings calls apply the result.
type providerWizard struct {
	label     string // heading and success-line label
	errLabel  string // label used when wrapping errors
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	apply     func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func (w providerWizard) run(cmd *cobra.Command, reader *bufio.Reader) error {
	provider := pickOption(cmd, reader, "Select "+w.label+" Provider", w.providers)

	model := w.defaults[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if entered := readLine(reader); entered != "" {
		model = entered
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := w.apply(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", w.errLabel, err)
	}

	// Ping the provider before declaring success so a typo in the key
	// or model surfaces here, not on the first query.
	cmd.Print("Validating configuration... ")
	if err := w.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", w.errLabel, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", w.label, provider.Description(), model)
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	w := providerWizard{
		label:     "Embedding",
		errLabel:  "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		apply:     settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
	return w.run(cmd, bufio.NewReader(os.Stdin))
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	w := providerWizard{
		label:     "LLM",
		errLabel:  "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		apply:     settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
	return w.run(cmd, bufio.NewReader(os.Stdin))
}

func runConfigRerank(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	selected := pickOption(cmd, reader, "Select Reranking Strategy", domain.AllRerankerKinds())

	if err := settingsService.SetRerankerKind(selected); err != nil {
		return fmt.Errorf("failed to set reranking strategy: %w", err)
	}
	cmd.Printf("Reranking strategy set to: %s\n", selected.Description())

	if selected.RequiresLLM() {
		if settings, err := settingsService.Get(); err == nil && settings != nil && !settings.LLM.IsConfigured() {
			cmd.Println("\nNote: This strategy requires an LLM provider.")
			cmd.Println("Run 'ansa config llm' to configure.")
		}
	}
	return nil
}

func runConfigRepository(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	selected := pickOption(cmd, reader, "Select Document Repository", domain.AllRepositoryKinds())

	if err := settingsService.SetRepositoryKind(selected); err != nil {
		return fmt.Errorf("failed to set repository: %w", err)
	}
	cmd.Printf("Repository set to: %s\n", selected.Description())

	if !selected.Persistent() {
		cmd.Println("\nNote: Documents in this repository do not survive restarts.")
	}
	cmd.Println("The change takes effect on the next run.")
	return nil
}

// parseConfigValue interprets raw as a bool, int or float before falling
// back to a string, so TOML keeps the value's natural type.
func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// pickOption prints a numbered menu and reads the user's choice,
// defaulting to the first entry.
func pickOption[T interface{ Description() string }](cmd *cobra.Command, reader *bufio.Reader, title string, options []T) T {
	cmd.Println(title)
	for i, o := range options {
		cmd.Printf("  %d. %s\n", i+1, o.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(options), 1)
	return options[idx-1]
}

// readLine reads one line of interactive input, trimmed.
//
//nolint:errcheck // best-effort read; an empty string falls back to defaults
func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice maps menu input to a 1-based index, falling back to
// defaultVal when the input is empty, not a number, or out of range.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readPassword reads a secret without echo when stdin is a terminal,
// falling back to a plain line read.
//
//nolint:errcheck // best-effort read; empty keys are rejected by callers
func readPassword() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if pw, err := term.ReadPassword(fd); err == nil {
			return string(pw)
		}
	}
	return readLine(bufio.NewReader(os.Stdin))
}

// maskAPIKey keeps the first and last four characters of a key so it
// can be recognised without being readable.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
