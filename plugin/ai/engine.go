package ai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ayadav/gojo/internal/errors"
)

// VerifiedPrefix is emitted ahead of answers that went through web search so
// the client can mark them.
const VerifiedPrefix = "Verified from web:\n"

// WebSearchToolName is the single capability offered to the model.
const WebSearchToolName = "web_search"

const (
	decisionTemperature = 0.1
	decisionMaxTokens   = 300
)

var webSearchTool = ToolDefinition{
	Name:        WebSearchToolName,
	Description: "Search the web for recent or external information the resume cannot answer.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The search query."}
		},
		"required": ["query"]
	}`),
}

// Engine orchestrates the two-phase answer protocol: a non-streaming
// tool-decision call, an optional synchronous web search, and a streaming
// answer call.
type Engine struct {
	llm          LLMService
	search       SearchService
	systemPrompt string
}

// NewEngine creates an answer engine with the given provider, search tool and
// composed system prompt.
func NewEngine(llm LLMService, search SearchService, systemPrompt string) *Engine {
	return &Engine{
		llm:          llm,
		search:       search,
		systemPrompt: systemPrompt,
	}
}

// Answer is one streamed reply. Tokens is closed when the stream ends; a
// mid-stream failure is delivered on Errs. Verified marks search-augmented
// replies, which should be prefixed with VerifiedPrefix.
type Answer struct {
	Verified bool
	Tokens   <-chan string
	Errs     <-chan error
}

// Reply produces the assistant's answer to an open query over the given
// conversation history.
func (e *Engine) Reply(ctx context.Context, history []Message, userMessage string) (*Answer, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, SystemPrompt(e.systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userMessage))

	// Phase 1: let the model decide whether it needs the search tool. The
	// response content is otherwise discarded so a partial phase-1 answer is
	// never mixed with the streamed one.
	decision, err := e.llm.Complete(ctx, &CompletionRequest{
		Messages:    messages,
		Tools:       []ToolDefinition{webSearchTool},
		Temperature: decisionTemperature,
		MaxTokens:   decisionMaxTokens,
	})
	if err != nil {
		return nil, errors.ProviderError("tool-decision call failed", err)
	}

	verified := false
	if len(decision.ToolCalls) > 0 {
		// Only the first invocation of the turn is honored.
		call := decision.ToolCalls[0]
		query, err := parseSearchQuery(&call)
		if err != nil {
			return nil, err
		}

		slog.Debug("running web search", "query", query)
		result := e.search.Search(ctx, query)

		messages = append(messages,
			Message{Role: "assistant", ToolCall: &call},
			ToolResultMessage(call.ID, result),
		)
		verified = true
	}

	// Phase 2: stream the final answer.
	tokens, errs := e.llm.CompleteStream(ctx, &CompletionRequest{Messages: messages})
	return &Answer{
		Verified: verified,
		Tokens:   tokens,
		Errs:     errs,
	}, nil
}

// parseSearchQuery validates a web_search invocation and extracts its query.
func parseSearchQuery(call *ToolCall) (string, error) {
	if call.Name != WebSearchToolName {
		return "", errors.MalformedToolInvocation("model requested unknown tool "+call.Name, nil)
	}
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", errors.MalformedToolInvocation("unparsable web_search arguments", err)
	}
	if args.Query == "" {
		return "", errors.MalformedToolInvocation("web_search invoked without a query", nil)
	}
	return args.Query, nil
}
