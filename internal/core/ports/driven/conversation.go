package driven

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// ConversationStore persists conversation history for contextual answers.
// This is an optional service - when nil, queries are answered without
// conversational context.
type ConversationStore interface {
	// AppendMessage adds a message to its conversation.
	AppendMessage(ctx context.Context, msg domain.Message) error

	// RecentMessages returns up to limit messages for the conversation
	// in chronological order, oldest first.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)

	// AddContextItem stores a durable note for a conversation.
	AddContextItem(ctx context.Context, item domain.ContextItem) error

	// ContextItems returns the conversation's durable notes in the
	// order they were added.
	ContextItems(ctx context.Context, conversationID string) ([]domain.ContextItem, error)
}
