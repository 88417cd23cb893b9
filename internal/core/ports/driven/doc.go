// Package driven declares the interfaces core services call out
// through. Adapters under internal/adapters/driven implement them; the
// composition root in cmd/ansa decides which implementation backs each
// port.
//
// Two ports must always be wired: DocumentRepository and ConfigStore.
// The rest degrade gracefully when nil:
//
//   - EmbeddingService: documents are stored unembedded and semantic
//     search reports ErrEmbeddingUnavailable
//   - LLMService: answer generation reports ErrLLMUnavailable; keyword
//     and semantic search still work
//   - Reranker: retrieval order is kept as-is
//   - DocumentCache: every read goes to the repository
//   - ConversationStore: questions are answered without chat history
//
// Repositories may additionally implement BatchFetcher and Counter;
// core services detect these with a type assertion and fall back to
// per-document calls when absent.
//
// This package may import domain and nothing else of ansa.
package driven
