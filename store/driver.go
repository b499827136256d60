package store

import (
	"context"
)

// Driver is an interface for store driver.
// It contains all methods that a conversation store driver should implement.
type Driver interface {
	Close() error

	// ListChatMessages returns a session's retained messages in chronological
	// order. Unknown sessions yield an empty result.
	ListChatMessages(ctx context.Context, sessionID string) ([]*ChatMessage, error)

	// AppendChatMessage adds one message and prunes the session to at most
	// MaxHistory messages, oldest first, in the same critical section.
	AppendChatMessage(ctx context.Context, create *ChatMessage) error
}
