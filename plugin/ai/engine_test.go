package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayadav/gojo/internal/errors"
)

// fakeLLM is an LLMService with scripted phase responses.
type fakeLLM struct {
	completion    *Completion
	completeErr   error
	streamTokens  []string
	streamErr     error
	completeCalls int
	streamCalls   int
	lastComplete  *CompletionRequest
	lastStream    *CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req *CompletionRequest) (*Completion, error) {
	f.completeCalls++
	f.lastComplete = req
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completion, nil
}

func (f *fakeLLM) CompleteStream(_ context.Context, req *CompletionRequest) (<-chan string, <-chan error) {
	f.streamCalls++
	f.lastStream = req
	tokens := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(tokens)
		defer close(errs)
		for _, token := range f.streamTokens {
			tokens <- token
		}
		if f.streamErr != nil {
			errs <- f.streamErr
		}
	}()
	return tokens, errs
}

type fakeSearch struct {
	result    string
	lastQuery string
	calls     int
}

func (f *fakeSearch) Search(_ context.Context, query string) string {
	f.calls++
	f.lastQuery = query
	return f.result
}

func drain(t *testing.T, answer *Answer) (string, error) {
	t.Helper()
	var out string
	for token := range answer.Tokens {
		out += token
	}
	return out, <-answer.Errs
}

func TestReplyDirectAnswer(t *testing.T) {
	llm := &fakeLLM{
		completion:   &Completion{Content: "discarded phase-1 text", FinishReason: "stop"},
		streamTokens: []string{"final ", "answer"},
	}
	search := &fakeSearch{}
	engine := NewEngine(llm, search, BuildSystemPrompt("RESUME"))

	answer, err := engine.Reply(context.Background(), nil, "What is your GPA?")
	require.NoError(t, err)
	assert.False(t, answer.Verified)

	out, streamErr := drain(t, answer)
	require.NoError(t, streamErr)
	assert.Equal(t, "final answer", out)

	// Phase-1 content is discarded; only the streamed call produces output.
	assert.Equal(t, 1, llm.completeCalls)
	assert.Equal(t, 1, llm.streamCalls)
	assert.Equal(t, 0, search.calls)

	// Phase 1 offers exactly the search tool; phase 2 offers none.
	require.Len(t, llm.lastComplete.Tools, 1)
	assert.Equal(t, WebSearchToolName, llm.lastComplete.Tools[0].Name)
	assert.Empty(t, llm.lastStream.Tools)
}

func TestReplyWithWebSearch(t *testing.T) {
	llm := &fakeLLM{
		completion: &Completion{
			FinishReason: "tool_calls",
			ToolCalls: []ToolCall{
				{ID: "call-1", Name: WebSearchToolName, Arguments: `{"query":"llm security 2026"}`},
				{ID: "call-2", Name: WebSearchToolName, Arguments: `{"query":"ignored extra call"}`},
			},
		},
		streamTokens: []string{"verified answer"},
	}
	search := &fakeSearch{result: "search digest"}
	engine := NewEngine(llm, search, "prompt")

	answer, err := engine.Reply(context.Background(), nil, "What's trending in LLM security?")
	require.NoError(t, err)
	assert.True(t, answer.Verified)

	out, streamErr := drain(t, answer)
	require.NoError(t, streamErr)
	assert.Equal(t, "verified answer", out)

	// Only the first invocation is honored.
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, "llm security 2026", search.lastQuery)

	// Phase 2 sees the tool-call message and its result.
	messages := llm.lastStream.Messages
	require.Len(t, messages, 4) // system, user, assistant tool call, tool result
	assert.Equal(t, "assistant", messages[2].Role)
	require.NotNil(t, messages[2].ToolCall)
	assert.Equal(t, "call-1", messages[2].ToolCall.ID)
	assert.Equal(t, "tool", messages[3].Role)
	assert.Equal(t, "call-1", messages[3].ToolCallID)
	assert.Equal(t, "search digest", messages[3].Content)
}

func TestReplyIncludesHistory(t *testing.T) {
	llm := &fakeLLM{completion: &Completion{FinishReason: "stop"}, streamTokens: []string{"ok"}}
	engine := NewEngine(llm, &fakeSearch{}, "prompt")

	history := []Message{UserMessage("earlier"), AssistantMessage("reply")}
	_, err := engine.Reply(context.Background(), history, "now")
	require.NoError(t, err)

	messages := llm.lastComplete.Messages
	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "earlier", messages[1].Content)
	assert.Equal(t, "reply", messages[2].Content)
	assert.Equal(t, "now", messages[3].Content)
}

func TestReplyPhaseOneFailure(t *testing.T) {
	llm := &fakeLLM{completeErr: assert.AnError}
	engine := NewEngine(llm, &fakeSearch{}, "prompt")

	_, err := engine.Reply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderError))
	assert.Equal(t, 0, llm.streamCalls)
}

func TestReplyMalformedToolInvocation(t *testing.T) {
	testCases := []struct {
		name string
		call ToolCall
	}{
		{"bad_json", ToolCall{ID: "c", Name: WebSearchToolName, Arguments: `{"query":`}},
		{"empty_query", ToolCall{ID: "c", Name: WebSearchToolName, Arguments: `{}`}},
		{"unknown_tool", ToolCall{ID: "c", Name: "rm_rf", Arguments: `{}`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &fakeLLM{completion: &Completion{FinishReason: "tool_calls", ToolCalls: []ToolCall{tc.call}}}
			engine := NewEngine(llm, &fakeSearch{}, "prompt")

			_, err := engine.Reply(context.Background(), nil, "hi")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedToolInvocation))
		})
	}
}

func TestReplyStreamFailureIsDeliveredInBand(t *testing.T) {
	llm := &fakeLLM{
		completion:   &Completion{FinishReason: "stop"},
		streamTokens: []string{"partial "},
		streamErr:    assert.AnError,
	}
	engine := NewEngine(llm, &fakeSearch{}, "prompt")

	answer, err := engine.Reply(context.Background(), nil, "hi")
	require.NoError(t, err)

	out, streamErr := drain(t, answer)
	assert.Equal(t, "partial ", out)
	assert.Error(t, streamErr)
}
