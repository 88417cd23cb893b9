package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// Ensure QueryOrchestrator implements the interfaces.
var (
	_ driving.QueryService    = (*QueryOrchestrator)(nil)
	_ driven.PromptStoreAware = (*QueryOrchestrator)(nil)
)

const (
	// noDocumentsResponse is returned when retrieval finds nothing
	// above the similarity threshold.
	noDocumentsResponse = "I could not find any relevant documents to answer your question. Try rephrasing it, or ingest more documents first."

	// errorResponse is returned when a fatal pipeline stage fails.
	errorResponse = "An error occurred while processing your question. Please try again."
)

// defaultRAGSystemPrompt grounds the model in the retrieved documents.
// The %s placeholder receives the assembled context block.
const defaultRAGSystemPrompt = `You are a helpful assistant that answers questions using the provided context.

Answer using only the information in the context below. If the context does not contain the answer, say that you do not know instead of guessing. Refer to documents by their titles when citing them.

%s`

// Retriever is the slice of the document store the query pipeline
// needs. *DocumentStore satisfies it.
type Retriever interface {
	// SemanticSearch ranks stored documents by similarity to the
	// query embedding.
	SemanticSearch(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.Candidate, error)
}

// QueryOrchestrator runs the retrieval-augmented answer pipeline:
// embed the question, retrieve candidates, optionally rerank, assemble
// conversational and document context, and generate a grounded answer.
// It never returns an error; pipeline failures are reported inside the
// returned Answer so callers always receive a well-formed result.
type QueryOrchestrator struct {
	embedder      driven.EmbeddingService
	retriever     Retriever
	llm           driven.LLMService
	reranker      driven.Reranker
	conversations driven.ConversationStore
	prompts       driven.PromptStore
	cfg           domain.QuerySettings
	log           *logrus.Logger
}

// NewQueryOrchestrator creates a query orchestrator. The embedder,
// retriever and llm are required; the reranker, conversation store and
// prompt store are optional and attached with the Set methods. Zero
// config fields fall back to the application defaults.
func NewQueryOrchestrator(
	embedder driven.EmbeddingService,
	retriever Retriever,
	llm driven.LLMService,
	cfg domain.QuerySettings,
	log *logrus.Logger,
) *QueryOrchestrator {
	defaults := domain.DefaultAppSettings().Query
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = defaults.ScoreThreshold
	}
	if cfg.MinRerankScore == 0 {
		cfg.MinRerankScore = defaults.MinRerankScore
	}
	if cfg.ContextMessages <= 0 {
		cfg.ContextMessages = defaults.ContextMessages
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = defaults.SnippetLength
	}
	if log == nil {
		log = logrus.New()
	}
	return &QueryOrchestrator{
		embedder:  embedder,
		retriever: retriever,
		llm:       llm,
		cfg:       cfg,
		log:       log,
	}
}

// SetReranker attaches an optional reranker for second-pass scoring.
func (o *QueryOrchestrator) SetReranker(r driven.Reranker) {
	o.reranker = r
}

// SetConversationStore attaches an optional conversation store so
// answers can use and extend per-conversation history.
func (o *QueryOrchestrator) SetConversationStore(store driven.ConversationStore) {
	o.conversations = store
}

// SetPromptStore attaches an optional prompt store for customised
// system prompts.
func (o *QueryOrchestrator) SetPromptStore(store driven.PromptStore) {
	o.prompts = store
}

// Answer runs the full query pipeline for the request.
func (o *QueryOrchestrator) Answer(ctx context.Context, req domain.QueryRequest) domain.Answer {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return o.failure(question, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput))
	}

	queryID := req.ID
	if queryID == "" {
		queryID = uuid.NewString()
	}

	topK := req.TopK
	if topK <= 0 {
		topK = o.cfg.TopK
	}

	o.log.WithFields(logrus.Fields{
		"query_id":     queryID,
		"question":     question,
		"top_k":        topK,
		"owner":        req.OwnerID,
		"theme":        req.ThemeID,
		"conversation": req.ConversationID,
	}).Debug("Query pipeline started")

	embedding := req.Embedding
	if len(embedding) == 0 {
		var err error
		embedding, err = o.embedQuestion(ctx, question)
		if err != nil {
			o.log.WithError(err).Warn("Query embedding failed")
			return o.failure(question, err)
		}
	}

	candidates, err := o.retrieve(ctx, embedding, req, topK)
	if err != nil {
		o.log.WithError(err).Warn("Retrieval failed")
		return o.failure(question, err)
	}
	if len(candidates) == 0 {
		o.log.Debug("No documents above threshold")
		return domain.Answer{
			Query:     question,
			Response:  noDocumentsResponse,
			HasAnswer: false,
			Sources:   []domain.SourceRef{},
		}
	}

	candidates, reranked := o.rerank(ctx, question, candidates, topK)

	history, notes := o.conversationContext(ctx, req.ConversationID)
	system := o.buildSystemPrompt(candidates, history, notes)

	response, err := o.generate(ctx, system, question)
	if err != nil {
		o.log.WithError(err).Warn("Answer generation failed")
		return o.failure(question, err)
	}

	o.recordExchange(ctx, req.ConversationID, question, response)

	answer := domain.Answer{
		Query:     question,
		Response:  response,
		HasAnswer: true,
		Sources:   o.sources(candidates, question),
		Meta: domain.AnswerMeta{
			DocumentCount:    len(candidates),
			UsedConversation: len(history) > 0 || len(notes) > 0,
			RerankingUsed:    reranked,
		},
	}
	if reranked {
		answer.Meta.RerankerType = o.reranker.Name()
	}

	o.log.WithFields(logrus.Fields{
		"query_id":  queryID,
		"documents": len(candidates),
		"reranked":  reranked,
	}).Debug("Query pipeline complete")

	return answer
}

// failure converts a pipeline error into the structured error answer.
func (o *QueryOrchestrator) failure(question string, err error) domain.Answer {
	return domain.Answer{
		Query:     question,
		Response:  errorResponse,
		HasAnswer: false,
		Sources:   []domain.SourceRef{},
		Meta:      domain.AnswerMeta{Error: err.Error()},
	}
}

func (o *QueryOrchestrator) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	embedding, err := o.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	return embedding, nil
}

// retrieve over-fetches candidates so that reranking still has a full
// set to choose from after filtering.
func (o *QueryOrchestrator) retrieve(ctx context.Context, embedding []float32, req domain.QueryRequest, topK int) ([]domain.Candidate, error) {
	opts := domain.SearchOptions{
		Limit:     topK * overFetchFactor,
		OwnerID:   req.OwnerID,
		ThemeID:   req.ThemeID,
		Threshold: o.cfg.ScoreThreshold,
		Filters:   req.Filters,
	}
	candidates, err := o.retriever.SemanticSearch(ctx, embedding, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	return candidates, nil
}

// rerank applies the optional reranker and keeps the top candidates
// above the configured minimum score. Reranking is advisory: when it
// fails, or filters out every candidate, the retrieval order is kept.
// The returned flag reports whether the result is rerank-ordered.
func (o *QueryOrchestrator) rerank(ctx context.Context, question string, candidates []domain.Candidate, topK int) ([]domain.Candidate, bool) {
	if o.reranker == nil {
		return truncateCandidates(candidates, topK), false
	}

	ranked, err := o.reranker.Rerank(ctx, question, candidates, 0)
	if err != nil {
		o.log.WithError(err).Warn("Reranking failed, keeping retrieval order")
		return truncateCandidates(candidates, topK), false
	}

	kept := make([]domain.Candidate, 0, len(ranked))
	for _, c := range ranked {
		if c.Reranked != nil && *c.Reranked < o.cfg.MinRerankScore {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		o.log.WithFields(logrus.Fields{
			"candidates": len(candidates),
			"min_score":  o.cfg.MinRerankScore,
		}).Debug("Reranking filtered every candidate, keeping retrieval order")
		return truncateCandidates(candidates, topK), false
	}
	return truncateCandidates(kept, topK), true
}

func truncateCandidates(candidates []domain.Candidate, topK int) []domain.Candidate {
	if topK > 0 && len(candidates) > topK {
		return candidates[:topK]
	}
	return candidates
}

// conversationContext fetches the recent messages and durable notes
// for a conversation. Failures degrade to an answer without context.
func (o *QueryOrchestrator) conversationContext(ctx context.Context, conversationID string) ([]domain.Message, []domain.ContextItem) {
	if o.conversations == nil || conversationID == "" {
		return nil, nil
	}
	msgs, err := o.conversations.RecentMessages(ctx, conversationID, o.cfg.ContextMessages)
	if err != nil {
		o.log.WithError(err).Warn("Conversation history unavailable")
		msgs = nil
	}
	notes, err := o.conversations.ContextItems(ctx, conversationID)
	if err != nil {
		o.log.WithError(err).Warn("Conversation notes unavailable")
		notes = nil
	}
	return msgs, notes
}

// buildSystemPrompt assembles the conversation context and the
// retrieved documents into the system prompt.
func (o *QueryOrchestrator) buildSystemPrompt(candidates []domain.Candidate, history []domain.Message, notes []domain.ContextItem) string {
	var parts []string
	if block := formatNotes(notes); block != "" {
		parts = append(parts, block)
	}
	if conv := formatConversation(history); conv != "" {
		parts = append(parts, conv)
	}
	parts = append(parts, formatDocuments(candidates))
	contextBlock := strings.Join(parts, "\n")

	template := defaultRAGSystemPrompt
	if o.prompts != nil {
		if custom, err := o.prompts.Load(driven.PromptRAGSystem); err == nil && custom != "" {
			template = custom
		}
	}
	if !strings.Contains(template, "%s") {
		// A template without a placeholder would drop the context.
		template += "\n\n%s"
	}
	return fmt.Sprintf(template, contextBlock)
}

func (o *QueryOrchestrator) generate(ctx context.Context, system, question string) (string, error) {
	if o.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	response, err := o.llm.Generate(ctx, system, question, driven.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return response, nil
}

// recordExchange appends the question and answer to the conversation.
// Best-effort: history failures never affect the returned answer.
func (o *QueryOrchestrator) recordExchange(ctx context.Context, conversationID, question, response string) {
	if o.conversations == nil || conversationID == "" {
		return
	}
	now := time.Now()
	exchange := []domain.Message{
		{ID: uuid.NewString(), ConversationID: conversationID, Role: domain.RoleUser, Content: question, CreatedAt: now},
		{ID: uuid.NewString(), ConversationID: conversationID, Role: domain.RoleAssistant, Content: response, CreatedAt: now},
	}
	for _, msg := range exchange {
		if err := o.conversations.AppendMessage(ctx, msg); err != nil {
			o.log.WithError(err).Warn("Failed to record conversation message")
			return
		}
	}
}

// sources builds the provenance list for the answer, one entry per
// supporting document with a query-focused snippet.
func (o *QueryOrchestrator) sources(candidates []domain.Candidate, question string) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(candidates))
	for _, c := range candidates {
		doc := c.Document
		refs = append(refs, domain.SourceRef{
			DocumentID: doc.ID,
			Title:      doc.DisplayTitle(),
			Source:     doc.Source,
			Snippet:    extractSnippet(doc.Content, question, o.cfg.SnippetLength),
			Score:      c.BestScore(),
		})
	}
	return refs
}

// formatDocuments renders the candidates with explicit boundaries so
// the model can tell documents apart and cite them.
func formatDocuments(candidates []domain.Candidate) string {
	var b strings.Builder
	b.WriteString("Relevant documents:\n")
	for i, c := range candidates {
		doc := c.Document
		fmt.Fprintf(&b, "\n--- Document %d: %s", i+1, doc.DisplayTitle())
		if doc.Source != "" {
			fmt.Fprintf(&b, " (source: %s)", doc.Source)
		}
		if c.Reranked != nil {
			fmt.Fprintf(&b, " [relevance: %.2f]", *c.Reranked)
		}
		b.WriteString(" ---\n")
		b.WriteString(doc.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// formatConversation renders prior messages oldest first.
func formatConversation(history []domain.Message) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

// formatNotes renders the conversation's durable notes.
func formatNotes(notes []domain.ContextItem) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Notes for this conversation:\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "- %s\n", n.Content)
	}
	return b.String()
}
