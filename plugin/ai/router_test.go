package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyQuery(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected QueryKind
	}{
		{"tell_me_about", "Tell me about your projects", QueryStructured},
		{"single_word", "project", QueryStructured},
		{"upper_padded", "  PROJECTS  ", QueryStructured},
		{"list_all", "list all projects", QueryStructured},
		{"portfolio", "Can I see your portfolio?", QueryStructured},
		{"open_gpa", "What is your GPA", QueryOpen},
		{"open_greeting", "hey there", QueryOpen},
		{"open_skills", "what languages do you know", QueryOpen},
		// Accepted false positive: substring match.
		{"projection", "explain map projection", QueryStructured},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyQuery(tc.input))
		})
	}
}
