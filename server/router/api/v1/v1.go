// Package v1 exposes the chat API of the portfolio assistant.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/plugin/ai"
	"github.com/ayadav/gojo/server/middleware"
	"github.com/ayadav/gojo/store"
)

// DefaultSessionID scopes requests that do not supply their own session key.
const DefaultSessionID = "default"

// ResumeLoader reads the resume text backing every answer.
type ResumeLoader interface {
	Load() (string, error)
}

// APIV1Service wires the chat pipeline into HTTP routes.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	LLM     ai.LLMService
	Search  ai.SearchService
	Resume  ResumeLoader

	limiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, llm ai.LLMService, search ai.SearchService, resume ResumeLoader) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Store:   store,
		LLM:     llm,
		Search:  search,
		Resume:  resume,
		// One chat request per second per session, small burst for retries.
		limiter: middleware.NewRateLimiter(rate.Limit(1), 5),
	}
}

// RegisterRoutes attaches the service routes to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", s.Chat)
	e.GET("/healthz", s.Healthz)
}

// Healthz reports liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
