package domain

import "time"

// QueryRequest describes a question posed against an owner's documents.
type QueryRequest struct {
	// ID identifies the query. Generated when empty.
	ID string

	// Question is the natural-language query text.
	Question string

	// Embedding is an optional precomputed embedding of the question.
	// When set, the pipeline uses it instead of calling the embedder.
	Embedding []float32

	// OwnerID scopes retrieval to a single owner.
	OwnerID string

	// ThemeID scopes retrieval to a topic collection.
	ThemeID string

	// ConversationID links the query to an ongoing conversation.
	// Empty means no conversation context is used.
	ConversationID string

	// TopK is the number of documents to ground the answer on.
	// Zero means the configured default applies.
	TopK int

	// Filters restricts retrieval by exact metadata match.
	Filters map[string]any

	// Metadata carries caller-supplied annotations. It does not affect
	// retrieval; use Filters for that.
	Metadata map[string]any

	// CreatedAt is when the query was posed. Zero means now.
	CreatedAt time.Time
}

// Candidate is a retrieved document with its relevance scores.
type Candidate struct {
	// Document is the retrieved document.
	Document Document

	// Score is the retrieval similarity score.
	Score float64

	// Reranked is the score assigned by a reranker, if one ran.
	Reranked *float64
}

// BestScore returns the reranked score when present, otherwise the
// retrieval score.
func (c Candidate) BestScore() float64 {
	if c.Reranked != nil {
		return *c.Reranked
	}
	return c.Score
}

// Answer is the structured result of a query. A query always produces
// an Answer; failures are reported through HasAnswer and Meta.Error
// rather than raised to the caller.
type Answer struct {
	// Query echoes the question that was asked.
	Query string `json:"query"`

	// Response is the generated answer text.
	Response string `json:"response"`

	// HasAnswer is false when no documents matched or the pipeline failed.
	HasAnswer bool `json:"has_answer"`

	// Sources lists the documents the answer was grounded on.
	Sources []SourceRef `json:"sources"`

	// Meta describes how the answer was produced.
	Meta AnswerMeta `json:"metadata"`
}

// AnswerMeta describes how an answer was produced.
type AnswerMeta struct {
	// DocumentCount is the number of documents used for grounding.
	DocumentCount int `json:"document_count"`

	// UsedConversation is true when conversation history was included.
	UsedConversation bool `json:"used_conversation_context"`

	// RerankingUsed is true when a reranker reordered the candidates.
	RerankingUsed bool `json:"reranking_used"`

	// RerankerType names the reranker that ran, if any.
	RerankerType string `json:"reranker_type,omitempty"`

	// Error carries the failure description for degraded answers.
	Error string `json:"error,omitempty"`
}

// SourceRef is a citation for one document an answer drew on.
type SourceRef struct {
	// DocumentID identifies the cited document.
	DocumentID string `json:"id"`

	// Title is the document's display title.
	Title string `json:"title"`

	// Source is the document's original location, if known.
	Source string `json:"source,omitempty"`

	// Snippet is a short extract relevant to the query.
	Snippet string `json:"snippet"`

	// Score is the document's best relevance score.
	Score float64 `json:"score"`
}
