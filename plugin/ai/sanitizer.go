package ai

import (
	"regexp"
	"strings"
)

// sourcesPattern marks the start of a trailing "Sources:" section at the
// beginning of the text or of a line.
var sourcesPattern = regexp.MustCompile(`(^|\n)[ \t]*Sources[ \t]*:`)

const maxHeadingHashes = 6

// Sanitizer is a stateful transducer applied to each fragment of the model's
// token stream before it reaches the client. It strips markdown emphasis and
// heading markers, collapses horizontal whitespace runs and silences
// everything from a "Sources:" line onward. State is carried across fragments
// so formatting tokens split at arbitrary stream boundaries are still
// handled; the same text yields the same output regardless of chunking.
type Sanitizer struct {
	suppressing     bool // sticky: a Sources section started
	pendingEmphasis bool // unmatched '*' seen
	atLineStart     bool
	pendingHashes   int  // '#' run being collected at line start
	inHeadingSpace  bool // swallowing whitespace after heading hashes
	wsCount         int  // pending horizontal whitespace run
	wsFirst         rune
	seen            strings.Builder // accumulated raw input for Sources detection
}

// NewSanitizer creates a sanitizer for one answer stream.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{atLineStart: true}
}

// Write sanitizes one stream fragment. The returned string may be empty, in
// which case nothing should be forwarded.
func (s *Sanitizer) Write(fragment string) string {
	if s.suppressing {
		return ""
	}

	// The sentinel may be split across fragments, so it is matched against
	// everything seen so far. The fragment completing it is dropped whole.
	s.seen.WriteString(fragment)
	if sourcesPattern.MatchString(s.seen.String()) {
		s.suppressing = true
		return ""
	}

	var out strings.Builder
	for _, r := range fragment {
		s.writeRune(&out, r)
	}
	return out.String()
}

// Flush drains carried state at the end of the stream. A trailing heading
// marker run is dropped; a trailing whitespace run is emitted collapsed.
func (s *Sanitizer) Flush() string {
	if s.suppressing {
		return ""
	}
	s.pendingHashes = 0

	var out strings.Builder
	s.flushWhitespace(&out)
	return out.String()
}

func (s *Sanitizer) writeRune(out *strings.Builder, r rune) {
	// Emphasis markers are removed before any line-shape handling, so a '*'
	// inside a heading run does not break the run.
	if r == '*' {
		s.pendingEmphasis = !s.pendingEmphasis
		return
	}

	if r == '#' {
		if s.atLineStart || s.pendingHashes > 0 {
			s.atLineStart = false
			s.pendingHashes++
			// Seven or more hashes are not a heading; emit the run verbatim.
			if s.pendingHashes > maxHeadingHashes {
				s.flushWhitespace(out)
				out.WriteString(strings.Repeat("#", s.pendingHashes))
				s.pendingHashes = 0
			}
			return
		}
		s.emit(out, r)
		return
	}

	switch r {
	case ' ', '\t':
		if s.pendingHashes > 0 {
			// Heading marker confirmed: drop the hashes and swallow the
			// whitespace that follows them.
			s.pendingHashes = 0
			s.inHeadingSpace = true
		}
		if s.inHeadingSpace {
			return
		}
		s.atLineStart = false
		if s.wsCount == 0 {
			s.wsFirst = r
		}
		s.wsCount++

	case '\n':
		s.pendingHashes = 0
		s.inHeadingSpace = false
		s.flushWhitespace(out)
		out.WriteRune('\n')
		s.atLineStart = true

	default:
		s.pendingHashes = 0
		s.emit(out, r)
	}
}

// emit writes a regular character, flushing any pending whitespace run first.
func (s *Sanitizer) emit(out *strings.Builder, r rune) {
	s.inHeadingSpace = false
	s.flushWhitespace(out)
	out.WriteRune(r)
	s.atLineStart = false
}

// flushWhitespace resolves a pending horizontal whitespace run: a single
// character is kept as is, a run of two or more collapses to one space.
func (s *Sanitizer) flushWhitespace(out *strings.Builder) {
	switch {
	case s.wsCount == 1:
		out.WriteRune(s.wsFirst)
	case s.wsCount > 1:
		out.WriteRune(' ')
	}
	s.wsCount = 0
}
