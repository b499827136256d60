// Package resume reads the preprocessed plain-text resume and parses its
// PROJECTS section into structured records. The text file is produced offline
// from the source PDF and is read-only at request time.
package resume

import (
	"os"

	"github.com/ayadav/gojo/internal/errors"
)

// Loader reads the resume text from disk.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given resume path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the raw resume text. A missing or unreadable file is a
// resource problem, not a per-request error.
func (l *Loader) Load() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", errors.ResourceUnavailable("resume text is not readable", err)
	}
	return string(data), nil
}
