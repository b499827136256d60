package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ayadav/gojo/internal/profile"
)

// MaxHistory is the maximum number of messages retained per session.
// Older messages are evicted FIFO at append time.
const MaxHistory = 20

// Store provides access to the conversation history.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// ListChatMessages returns the retained history of a session, oldest first.
func (s *Store) ListChatMessages(ctx context.Context, sessionID string) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, sessionID)
}

// AppendChatMessage records one message for a session.
func (s *Store) AppendChatMessage(ctx context.Context, sessionID string, role ChatRole, content string) error {
	return s.driver.AppendChatMessage(ctx, &ChatMessage{
		UID:       shortuuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedTs: time.Now().Unix(),
	})
}
