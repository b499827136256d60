// Package memory provides an in-process conversation store driver, used for
// development and tests. History is lost on restart, which is acceptable for
// advisory conversation memory.
package memory

import (
	"context"
	"sync"

	"github.com/ayadav/gojo/store"
)

// DB is the in-memory driver.
type DB struct {
	mu       sync.Mutex
	sessions map[string][]*store.ChatMessage
}

// NewDB opens a new in-memory driver.
func NewDB() *DB {
	return &DB{
		sessions: make(map[string][]*store.ChatMessage),
	}
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) ListChatMessages(_ context.Context, sessionID string) ([]*store.ChatMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	messages := d.sessions[sessionID]
	out := make([]*store.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}

func (d *DB) AppendChatMessage(_ context.Context, create *store.ChatMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	messages := append(d.sessions[create.SessionID], create)
	if len(messages) > store.MaxHistory {
		messages = messages[len(messages)-store.MaxHistory:]
	}
	d.sessions[create.SessionID] = messages
	return nil
}

var _ store.Driver = (*DB)(nil)
