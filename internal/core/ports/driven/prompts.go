package driven

// PromptStore loads named prompt templates. Backings range from an
// on-disk directory (editable, reloadable) to compiled-in defaults.
type PromptStore interface {
	// Load returns the template registered under name. A missing
	// optional prompt may yield a built-in default instead of an error.
	Load(name string) (string, error)

	// Reload drops cached templates so edits on disk take effect
	// without restarting.
	Reload()
}

// Prompt names shared between consumers and stores.
const (
	// PromptRAGSystem is the system prompt for grounded answer
	// generation. It carries one %s slot for the document context.
	PromptRAGSystem = "rag_system"

	// PromptRerankScore asks the model to rate one document against a
	// query. It carries two %s slots: query, then document.
	PromptRerankScore = "rerank_score"
)

// PromptStoreAware marks services whose prompts can be swapped after
// construction. Without an injected store they fall back to their
// built-in templates.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
