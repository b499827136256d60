// Package websearch provides the web search capability offered to the chat
// model. Search failures never surface as errors: the caller always gets a
// short text answer, possibly a fixed fallback, which is fed back to the model
// as the tool result.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// FallbackUnavailable is returned when no search credential is configured.
	FallbackUnavailable = "Web search is unavailable right now."
	// FallbackFailed is returned on a non-success status from the provider.
	FallbackFailed = "Web search failed."
	// FallbackErrored is returned on transport or decoding errors.
	FallbackErrored = "Web search errored."

	maxSnippets = 3
)

// Config holds the web search configuration.
type Config struct {
	// BaseURL is the search endpoint, e.g. https://api.tavily.com/search.
	BaseURL string
	// APIKey is the search provider credential.
	APIKey string
	// Timeout is the HTTP timeout for search requests.
	Timeout time.Duration
}

// DefaultConfig returns the default web search configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.tavily.com/search",
		Timeout: 15 * time.Second,
	}
}

// Client performs web searches.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a search client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search runs a free-text query and returns a short text digest. It always
// returns usable text; provider problems degrade to a fixed fallback string.
func (c *Client) Search(ctx context.Context, query string) string {
	if c.config.APIKey == "" {
		slog.Debug("web search skipped, no API key configured")
		return FallbackUnavailable
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        c.config.APIKey,
		Query:         query,
		IncludeAnswer: true,
		MaxResults:    maxSnippets,
	})
	if err != nil {
		return FallbackErrored
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return FallbackErrored
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("web search request failed", "error", err)
		return FallbackErrored
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		slog.Warn("web search returned non-success status", "status", resp.StatusCode)
		return FallbackFailed
	}

	var result searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		slog.Warn("web search response decoding failed", "error", err)
		return FallbackErrored
	}

	return digest(&result)
}

// digest flattens the provider response into a short snippet block.
func digest(result *searchResponse) string {
	if strings.TrimSpace(result.Answer) != "" {
		return strings.TrimSpace(result.Answer)
	}

	var lines []string
	for i, r := range result.Results {
		if i >= maxSnippets {
			break
		}
		snippet := strings.TrimSpace(r.Content)
		if snippet == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.TrimSpace(r.Title), snippet))
	}
	if len(lines) == 0 {
		return FallbackFailed
	}
	return strings.Join(lines, "\n")
}
