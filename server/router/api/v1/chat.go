package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayadav/gojo/internal/errors"
	"github.com/ayadav/gojo/internal/observability"
	"github.com/ayadav/gojo/plugin/ai"
	"github.com/ayadav/gojo/plugin/resume"
	"github.com/ayadav/gojo/store"
)

// Client-facing bodies. These are stable strings the frontend matches on;
// internal error detail stays in the logs.
const (
	msgInvalidRequest = "Invalid request. Expected { message: string }"
	msgNotConfigured  = "Server is not configured for chat. Missing OpenAI API key."
	msgRateLimited    = "Too many requests. Please slow down."
	msgAssistantDown  = "The assistant is unavailable right now. Please try again."

	// streamErrorMarker is appended in-band when the answer stream breaks
	// after the 200 status has already been committed.
	streamErrorMarker = "\n\n[Error while streaming response]"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Chat answers one visitor message, either from the resume directly or by
// streaming a model reply.
func (s *APIV1Service) Chat(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil || strings.TrimSpace(request.Message) == "" {
		return c.String(http.StatusBadRequest, msgInvalidRequest)
	}
	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	rc := observability.NewRequestContext(slog.Default(), sessionID)

	if !s.Profile.IsChatEnabled() {
		rc.Warn("chat request rejected, no provider credential")
		return c.String(http.StatusInternalServerError, msgNotConfigured)
	}
	if !s.limiter.Allow(sessionID) {
		rc.Warn("chat request rate limited")
		return c.String(http.StatusTooManyRequests, msgRateLimited)
	}

	resumeText, err := s.Resume.Load()
	if err != nil {
		rc.Error("resume unavailable", err)
		return c.String(http.StatusInternalServerError, msgNotConfigured)
	}

	if ai.ClassifyQuery(request.Message) == ai.QueryStructured {
		return s.chatStructured(c, rc, sessionID, request.Message, resumeText)
	}
	return s.chatOpen(c, rc, sessionID, request.Message, resumeText)
}

// chatStructured answers a project-listing query deterministically, without
// calling the model.
func (s *APIV1Service) chatStructured(c echo.Context, rc *observability.RequestContext, sessionID, message, resumeText string) error {
	ctx := c.Request().Context()

	body := resume.FormatProjects(resume.ExtractProjects(resumeText))

	if err := s.Store.AppendChatMessage(ctx, sessionID, store.ChatRoleUser, message); err != nil {
		rc.Error("persisting user message failed", err)
	}
	if err := s.Store.AppendChatMessage(ctx, sessionID, store.ChatRoleAssistant, body); err != nil {
		rc.Error("persisting assistant message failed", err)
	}

	rc.Info("chat served",
		slog.String(observability.LogFieldRoute, "structured"),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
	return c.String(http.StatusOK, body)
}

// chatOpen runs the two-phase model protocol and streams the reply.
func (s *APIV1Service) chatOpen(c echo.Context, rc *observability.RequestContext, sessionID, message, resumeText string) error {
	ctx := c.Request().Context()

	// History is read before the new user message is persisted so the model
	// never sees the message twice.
	history, err := s.Store.ListChatMessages(ctx, sessionID)
	if err != nil {
		rc.Error("loading history failed", err)
		history = nil
	}

	engine := ai.NewEngine(s.LLM, s.Search, ai.BuildSystemPrompt(resumeText))
	answer, err := engine.Reply(ctx, toEngineMessages(history), message)
	if err != nil {
		rc.Error("answer engine failed", err,
			slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, errors.ErrCodeProviderError))),
		)
		return c.String(http.StatusInternalServerError, msgAssistantDown)
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	response.WriteHeader(http.StatusOK)

	var sent strings.Builder
	write := func(chunk string) {
		if chunk == "" {
			return
		}
		if _, err := response.Write([]byte(chunk)); err != nil {
			return
		}
		sent.WriteString(chunk)
		response.Flush()
	}

	if answer.Verified {
		write(ai.VerifiedPrefix)
	}

	sanitizer := ai.NewSanitizer()
	streamFailed := false
	// Both channels are drained to completion: the terminal error may land
	// after the token channel has already closed.
	tokens, errs := answer.Tokens, answer.Errs
	for tokens != nil || errs != nil {
		select {
		case token, ok := <-tokens:
			if !ok {
				tokens = nil
				continue
			}
			write(sanitizer.Write(token))
		case streamErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if streamErr != nil {
				rc.Error("answer stream failed", streamErr)
				write(sanitizer.Flush())
				write(streamErrorMarker)
				streamFailed = true
				tokens, errs = nil, nil
			}
		case <-ctx.Done():
			rc.Warn("client disconnected mid-stream")
			streamFailed = true
			tokens, errs = nil, nil
		}
	}
	if !streamFailed {
		write(sanitizer.Flush())
	}

	// Persist what the visitor actually saw, prefix and partials included.
	if err := s.Store.AppendChatMessage(ctx, sessionID, store.ChatRoleUser, message); err != nil {
		rc.Error("persisting user message failed", err)
	}
	if sent.Len() > 0 {
		if err := s.Store.AppendChatMessage(ctx, sessionID, store.ChatRoleAssistant, sent.String()); err != nil {
			rc.Error("persisting assistant message failed", err)
		}
	}

	route := "open"
	if answer.Verified {
		route = "open_verified"
	}
	rc.Info("chat served",
		slog.String(observability.LogFieldRoute, route),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
		slog.Int(observability.LogFieldMessageLen, len(message)),
	)
	return nil
}

// toEngineMessages converts stored history into the engine's message shape.
// Tool exchanges are not persisted, so only user and assistant turns appear.
func toEngineMessages(history []*store.ChatMessage) []ai.Message {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case store.ChatRoleUser:
			messages = append(messages, ai.UserMessage(m.Content))
		case store.ChatRoleAssistant:
			messages = append(messages, ai.AssistantMessage(m.Content))
		}
	}
	return messages
}
