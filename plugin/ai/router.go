package ai

import (
	"strings"
)

// QueryKind is the deterministic routing decision for an incoming message.
type QueryKind string

const (
	// QueryStructured messages are answered from parsed resume data without a
	// model call.
	QueryStructured QueryKind = "structured"
	// QueryOpen messages require the model.
	QueryOpen QueryKind = "open"
)

// structuredPhrases is the fixed phrase set routed to the project list.
// The overlap between entries ("project" inside "projection") is a known,
// accepted false-positive risk.
var structuredPhrases = []string{
	"tell me about your projects",
	"tell me about your project",
	"list all projects",
	"list all project",
	"list projects",
	"list project",
	"show project",
	"portfolio",
	"projects",
	"project",
}

// ClassifyQuery decides whether a message can be answered deterministically.
// Classification is purely lexical: the lowercased, trimmed message is matched
// against the fixed phrase set.
func ClassifyQuery(message string) QueryKind {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, phrase := range structuredPhrases {
		if normalized == phrase || strings.Contains(normalized, phrase) {
			return QueryStructured
		}
	}
	return QueryOpen
}
