package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where gojo stores conversation history
	DSN string
	// Driver is the conversation store driver (memory, sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// ResumePath is the location of the preprocessed plain-text resume.
	ResumePath string

	// OpenAIAPIKey is the credential for the chat model provider. GOJO_OPENAI_API_KEY.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the provider endpoint. GOJO_OPENAI_BASE_URL.
	OpenAIBaseURL string
	// ChatModel is the model used for both completion phases. GOJO_CHAT_MODEL.
	ChatModel string

	// SearchAPIKey is the credential for the web search tool. GOJO_SEARCH_API_KEY.
	// The tool degrades to a fixed fallback answer when empty.
	SearchAPIKey string
	// SearchBaseURL is the web search endpoint. GOJO_SEARCH_BASE_URL.
	SearchBaseURL string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsChatEnabled returns true if the model provider credential is configured.
func (p *Profile) IsChatEnabled() bool {
	return p.OpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads provider configuration from GOJO_* environment variables.
func (p *Profile) FromEnv() {
	p.OpenAIAPIKey = getEnvOrDefault("GOJO_OPENAI_API_KEY", p.OpenAIAPIKey)
	p.OpenAIBaseURL = getEnvOrDefault("GOJO_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.ChatModel = getEnvOrDefault("GOJO_CHAT_MODEL", "gpt-4o-mini")
	p.SearchAPIKey = getEnvOrDefault("GOJO_SEARCH_API_KEY", p.SearchAPIKey)
	p.SearchBaseURL = getEnvOrDefault("GOJO_SEARCH_BASE_URL", "https://api.tavily.com/search")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	switch p.Driver {
	case "memory", "sqlite", "postgres":
	case "":
		p.Driver = "memory"
	default:
		return errors.Errorf("unknown store driver %q: only 'memory', 'sqlite' and 'postgres' are supported", p.Driver)
	}

	// The data dir holds the sqlite database and the default resume location.
	if p.Driver == "sqlite" || p.ResumePath == "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("gojo_%s.db", p.Mode)
		p.DSN = filepath.Join(p.Data, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.ResumePath == "" {
		p.ResumePath = filepath.Join(p.Data, "resume.txt")
	}

	return nil
}
