// Package server assembles the HTTP server around the chat pipeline.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/plugin/ai"
	"github.com/ayadav/gojo/plugin/resume"
	"github.com/ayadav/gojo/plugin/websearch"
	apiv1 "github.com/ayadav/gojo/server/router/api/v1"
	"github.com/ayadav/gojo/store"
)

// Server is the gojo HTTP server.
type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store
}

// NewServer creates the server and wires the chat pipeline into it.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:       e,
		Profile: profile,
		Store:   store,
	}

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	llm := ai.NewProvider(&ai.Config{
		BaseURL:   profile.OpenAIBaseURL,
		APIKey:    profile.OpenAIAPIKey,
		ChatModel: profile.ChatModel,
	})
	search := websearch.NewClient(&websearch.Config{
		BaseURL: profile.SearchBaseURL,
		APIKey:  profile.SearchAPIKey,
	})
	loader := resume.NewLoader(profile.ResumePath)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, llm, search, loader)
	apiV1Service.RegisterRoutes(e)

	return s, nil
}

// Start begins serving and blocks until the listener fails or shuts down.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "driver", s.Profile.Driver, "chat_enabled", s.Profile.IsChatEnabled())
	if err := s.e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

// Shutdown stops the server, draining in-flight requests first.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}
