package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure conversationStore implements the interface.
var _ driven.ConversationStore = (*conversationStore)(nil)

type conversationStore struct {
	store *Store
}

// AppendMessage adds a message to its conversation. A missing message
// ID or timestamp is filled in; a missing conversation ID is an error.
func (c *conversationStore) AppendMessage(ctx context.Context, msg domain.Message) error {
	if msg.ConversationID == "" {
		return fmt.Errorf("%w: conversation id is empty", domain.ErrInvalidInput)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := c.store.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages for the conversation in
// chronological order, oldest first. The newest messages win when the
// conversation is longer than the limit.
func (c *conversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	query := `SELECT id, conversation_id, role, content, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq DESC`
	args := []any{conversationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.Message
		var role string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// The query walks newest-first so LIMIT keeps the tail; flip back
	// to chronological order for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AddContextItem stores a durable note for a conversation. A missing
// item ID or timestamp is filled in.
func (c *conversationStore) AddContextItem(ctx context.Context, item domain.ContextItem) error {
	if item.ConversationID == "" {
		return fmt.Errorf("%w: conversation id is empty", domain.ErrInvalidInput)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := c.store.db.ExecContext(ctx,
		`INSERT INTO conversation_context (id, conversation_id, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		item.ID, item.ConversationID, item.Content, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert context item: %w", err)
	}
	return nil
}

// ContextItems returns the conversation's durable notes in the order
// they were added.
func (c *conversationStore) ContextItems(ctx context.Context, conversationID string) ([]domain.ContextItem, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, conversation_id, content, created_at
		 FROM conversation_context WHERE conversation_id = ? ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query context items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContextItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.ContextItem
		if err := rows.Scan(&item.ID, &item.ConversationID, &item.Content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan context item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate context items: %w", err)
	}
	return items, nil
}
