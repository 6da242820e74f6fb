// Package diag provides PXD's diagnostic primitives: error kinds, source
// line derivation, and warn-as-error escalation.
//
// The Kind enum is an int backed by a name table, and each diagnostic
// Session carries a github.com/google/uuid correlation ID for logging.
package diag

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes the category of a PXD error, opaque to the wire format
// itself but distinct to API callers.
type Kind int

const (
	HeaderMissing Kind = iota
	HeaderInvalid
	NotPxd
	VersionUnsupported
	Lex
	Parse
	TableInvariant
	DepthExceeded
	EmitInvalid
)

var kindNames = map[Kind]string{
	HeaderMissing:      "HeaderMissing",
	HeaderInvalid:      "HeaderInvalid",
	NotPxd:             "NotPxd",
	VersionUnsupported: "VersionUnsupported",
	Lex:                "Lex",
	Parse:              "Parse",
	TableInvariant:     "TableInvariant",
	DepthExceeded:      "DepthExceeded",
	EmitInvalid:        "EmitInvalid",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is a fatal PXD diagnostic. It carries enough structure for API
// callers to branch on Kind while still rendering as a plain, line-prefixed
// message for humans.
type Error struct {
	Kind    Kind
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Errf builds an *Error at the given line.
func Errf(kind Kind, line int, format string, a ...any) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, a...)}
}

// Line derives a 1-based source line number for offset by counting
// newlines in text[:offset]. It is computed lazily at diagnostic time
// rather than amortized into the hot scan loop.
func Line(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// Session correlates one lex+parse pass for logging, and
// carries the warn-as-error toggle.
type Session struct {
	ID          uuid.UUID
	WarnAsError bool
	Verbose     bool
}

// NewSession allocates a Session with a fresh correlation ID.
func NewSession(warnAsError bool) *Session {
	return &Session{ID: uuid.New(), WarnAsError: warnAsError}
}

// Warnf reports a version/format warning. Under WarnAsError it returns a
// fatal *Error of the given kind instead of logging; otherwise it logs to
// the standard logger with log.Printf and returns nil.
func (s *Session) Warnf(kind Kind, line int, format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	if s.WarnAsError {
		return &Error{Kind: kind, Line: line, Message: msg}
	}
	log.Printf("warning:%d: %s", line, msg)
	return nil
}

// Logf logs a verbose diagnostic tagged with the session's correlation ID.
// It is a no-op unless Verbose is set.
func (s *Session) Logf(format string, a ...any) {
	if !s.Verbose {
		return
	}
	log.Printf("[%s] %s", s.ID, fmt.Sprintf(format, a...))
}
