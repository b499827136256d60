package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/plugin/ai"
	"github.com/ayadav/gojo/store"
	"github.com/ayadav/gojo/store/db/memory"
)

const testResume = `Aniket Yadav
aniket@example.com

PROJECTS

LLM Guardrail | Go, OpenAI | Jan 2025 - Present
- Built a streaming response filter.
- GitHub: https://github.com/example/guardrail

EDUCATION
Some University
`

type stubLLM struct {
	completion    *ai.Completion
	completeErr   error
	streamTokens  []string
	streamErr     error
	completeCalls int
	streamCalls   int
}

func (f *stubLLM) Complete(_ context.Context, _ *ai.CompletionRequest) (*ai.Completion, error) {
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completion, nil
}

func (f *stubLLM) CompleteStream(_ context.Context, _ *ai.CompletionRequest) (<-chan string, <-chan error) {
	f.streamCalls++
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

type stubSearch struct {
	result string
	calls  int
}

func (f *stubSearch) Search(_ context.Context, _ string) string {
	f.calls++
	return f.result
}

type stubResume struct {
	text string
	err  error
}

func (f *stubResume) Load() (string, error) {
	return f.text, f.err
}

func newTestService(t *testing.T, llm ai.LLMService, search ai.SearchService, apiKey string) (*APIV1Service, *echo.Echo) {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Driver: "memory", OpenAIAPIKey: apiKey}
	svc := NewAPIV1Service(p, store.New(memory.NewDB(), p), llm, search, &stubResume{text: testResume})
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, e
}

func postChat(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatStructuredQuerySkipsModel(t *testing.T) {
	llm := &stubLLM{}
	svc, e := newTestService(t, llm, &stubSearch{}, "sk-test")

	rec := postChat(e, `{"message": "Tell me about your projects"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LLM Guardrail")
	assert.Contains(t, rec.Body.String(), "Built a streaming response filter.")
	assert.Equal(t, 0, llm.completeCalls)
	assert.Equal(t, 0, llm.streamCalls)

	// Both turns were persisted under the default session.
	history, err := svc.Store.ListChatMessages(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.ChatRoleUser, history[0].Role)
	assert.Equal(t, store.ChatRoleAssistant, history[1].Role)
	assert.Equal(t, rec.Body.String(), history[1].Content)
}

func TestChatOpenQueryStreamsSanitizedAnswer(t *testing.T) {
	llm := &stubLLM{
		completion:   &ai.Completion{FinishReason: "stop"},
		streamTokens: []string{"I focus on ", "**applied ML**", " work."},
	}
	svc, e := newTestService(t, llm, &stubSearch{}, "sk-test")

	rec := postChat(e, `{"message": "What do you work on?", "sessionId": "s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I focus on applied ML work.", rec.Body.String())
	assert.False(t, strings.HasPrefix(rec.Body.String(), ai.VerifiedPrefix))
	assert.Equal(t, 1, llm.completeCalls)
	assert.Equal(t, 1, llm.streamCalls)

	history, err := svc.Store.ListChatMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "I focus on applied ML work.", history[1].Content)
}

func TestChatWebSearchAnswerIsPrefixed(t *testing.T) {
	llm := &stubLLM{
		completion: &ai.Completion{
			FinishReason: "tool_calls",
			ToolCalls:    []ai.ToolCall{{ID: "c1", Name: ai.WebSearchToolName, Arguments: `{"query":"go releases"}`}},
		},
		streamTokens: []string{"Go 1.25 shipped recently."},
	}
	search := &stubSearch{result: "release notes digest"}
	svc, e := newTestService(t, llm, search, "sk-test")

	rec := postChat(e, `{"message": "What is new in Go?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ai.VerifiedPrefix+"Go 1.25 shipped recently.", rec.Body.String())
	assert.Equal(t, 1, search.calls)

	// The stored assistant turn keeps the prefix the visitor saw.
	history, err := svc.Store.ListChatMessages(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, strings.HasPrefix(history[1].Content, ai.VerifiedPrefix))
}

func TestChatMissingCredential(t *testing.T) {
	llm := &stubLLM{}
	_, e := newTestService(t, llm, &stubSearch{}, "")

	rec := postChat(e, `{"message": "hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgNotConfigured, rec.Body.String())
	assert.Equal(t, 0, llm.completeCalls)
}

func TestChatInvalidRequest(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"empty_message", `{"message": "   "}`},
		{"missing_message", `{"sessionId": "s1"}`},
		{"not_json", `message=hi`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, e := newTestService(t, &stubLLM{}, &stubSearch{}, "sk-test")
			rec := postChat(e, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, msgInvalidRequest, rec.Body.String())
		})
	}
}

func TestChatPhaseOneFailure(t *testing.T) {
	llm := &stubLLM{completeErr: assert.AnError}
	_, e := newTestService(t, llm, &stubSearch{}, "sk-test")

	rec := postChat(e, `{"message": "hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgAssistantDown, rec.Body.String())
	assert.Equal(t, 0, llm.streamCalls)
}

func TestChatStreamFailureMarkedInBand(t *testing.T) {
	llm := &stubLLM{
		completion:   &ai.Completion{FinishReason: "stop"},
		streamTokens: []string{"partial answer "},
		streamErr:    assert.AnError,
	}
	svc, e := newTestService(t, llm, &stubSearch{}, "sk-test")

	rec := postChat(e, `{"message": "hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Body.String(), streamErrorMarker))
	assert.Contains(t, rec.Body.String(), "partial answer")

	// The truncated reply, marker included, is what gets persisted.
	history, err := svc.Store.ListChatMessages(context.Background(), DefaultSessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, rec.Body.String(), history[1].Content)
}

func TestChatRateLimited(t *testing.T) {
	_, e := newTestService(t, &stubLLM{}, &stubSearch{}, "sk-test")

	var last *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		last = postChat(e, `{"message": "projects", "sessionId": "burst"}`)
		if last.Code == http.StatusTooManyRequests {
			break
		}
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, msgRateLimited, last.Body.String())
}

func TestHealthz(t *testing.T) {
	_, e := newTestService(t, &stubLLM{}, &stubSearch{}, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
