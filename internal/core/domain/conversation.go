package domain

import "time"

// MessageRole identifies the author of a conversation message.
type MessageRole string

// Available message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the string representation.
func (r MessageRole) String() string {
	return string(r)
}

// Message is a single turn in a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}

// ContextItem is a durable note attached to a conversation, such as a
// pinned fact or preference. Unlike messages, context items survive the
// recency window and are always included when answering within the
// conversation.
type ContextItem struct {
	ID             string
	ConversationID string
	Content        string
	CreatedAt      time.Time
}
