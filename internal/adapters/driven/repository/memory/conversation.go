package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of
// driven.ConversationStore. Messages and context items are kept in
// append order per conversation.
type ConversationStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
	items    map[string][]domain.ContextItem
}

// NewConversationStore creates an empty in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		messages: make(map[string][]domain.Message),
		items:    make(map[string][]domain.ContextItem),
	}
}

// AppendMessage adds a message to its conversation.
func (s *ConversationStore) AppendMessage(_ context.Context, msg domain.Message) error {
	if msg.ConversationID == "" {
		return fmt.Errorf("%w: conversation id is empty", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

// RecentMessages returns up to limit messages for the conversation,
// oldest first.
func (s *ConversationStore) RecentMessages(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// AddContextItem stores a durable note for a conversation.
func (s *ConversationStore) AddContextItem(_ context.Context, item domain.ContextItem) error {
	if item.ConversationID == "" {
		return fmt.Errorf("%w: conversation id is empty", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ConversationID] = append(s.items[item.ConversationID], item)
	return nil
}

// ContextItems returns the conversation's durable notes in the order
// they were added.
func (s *ConversationStore) ContextItems(_ context.Context, conversationID string) ([]domain.ContextItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.items[conversationID]
	out := make([]domain.ContextItem, len(items))
	copy(out, items)
	return out, nil
}
