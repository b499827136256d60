package store

// ChatRole tags who produced a message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
	ChatRoleTool      ChatRole = "tool"
)

// ChatMessage is one entry of a session's conversation history. Messages are
// append-only; the only mutation is oldest-first pruning at write time.
type ChatMessage struct {
	UID       string
	SessionID string
	Role      ChatRole
	Content   string
	CreatedTs int64
}
