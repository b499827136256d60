// Package ai implements the chat pipeline behind the portfolio assistant:
// provider access, deterministic query routing, the tool-augmented answer
// engine and the streaming output sanitizer.
package ai

import (
	"context"
	"encoding/json"
)

// Message represents a chat message sent to or received from the model.
// The role determines which optional fields are meaningful: assistant
// messages may carry a tool call, tool messages reference the call they
// answer.
type Message struct {
	Role       string // system, user, assistant, tool
	Content    string
	ToolCall   *ToolCall // assistant only
	ToolCallID string    // tool only
}

// ToolCall is the model's structured request to run a named external tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON as produced by the model
}

// ToolDefinition declares a callable capability offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema of the arguments
}

// Completion is the result of a non-streaming chat completion.
type Completion struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// CompletionRequest describes one call to the model provider.
type CompletionRequest struct {
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float32
	MaxTokens   int
}

// LLMService is the model provider boundary.
type LLMService interface {
	// Complete performs a synchronous chat completion.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// CompleteStream performs a streaming chat completion. The content channel
	// is closed when the stream ends; a terminal failure is delivered on the
	// error channel.
	CompleteStream(ctx context.Context, req *CompletionRequest) (<-chan string, <-chan error)
}

// SearchService is the web search tool boundary. Implementations never fail:
// provider problems degrade to fixed fallback text.
type SearchService interface {
	Search(ctx context.Context, query string) string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// ToolResultMessage creates a tool message answering the given call.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: callID}
}
