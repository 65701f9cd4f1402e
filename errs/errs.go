// Package errs defines the error taxonomy shared by every stage of the
// automaton pipeline: Thompson synthesis, subset construction, Hopcroft
// minimization and the driver that orchestrates them.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a pipeline error so the driver can decide whether to
// abort or skip the offending rule and continue.
type Kind int

const (
	// UnsupportedConstruct: the AST contains a non-greedy closure or an
	// assertion (line/text/word-boundary, lookaround). Kind.Fatal reports
	// false for it, but the driver does not skip the rule: pipeline.Run
	// returns it as the error of the whole run.
	UnsupportedConstruct Kind = iota
	// MalformedRange: a character range has lower > upper.
	MalformedRange
	// EmptyLanguage: a rule compiled to an FA with no path to any final
	// node. Non-fatal, surfaced as a warning.
	EmptyLanguage
	// InternalInvariantViolation: an assertion in the data model failed.
	// Always fatal.
	InternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case UnsupportedConstruct:
		return "unsupported construct"
	case MalformedRange:
		return "malformed range"
	case EmptyLanguage:
		return "empty language"
	case InternalInvariantViolation:
		return "internal invariant violation"
	default:
		return "unknown error kind"
	}
}

// Fatal reports whether a Kind must abort the whole pipeline run rather
// than just the rule that produced it.
func (k Kind) Fatal() bool {
	return k == InternalInvariantViolation
}

// Error carries enough context (rule name, source line) for the driver to
// report and, for non-fatal kinds, skip the offending rule.
type Error struct {
	Kind  Kind
	Rule  string
	Line  int
	Cause error
}

func (e *Error) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: rule %q (line %d): %v", e.Kind, e.Rule, e.Line, e.Cause)
	}
	return fmt.Sprintf("%s: rule %q: %v", e.Kind, e.Rule, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Kind-tagged error with a formatted message as its cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Cause: errors.New(fmt.Sprintf(format, args...))}
}

// Wrap attaches a Kind and rule context to an existing error, preserving
// its stack via github.com/pkg/errors.
func Wrap(kind Kind, rule string, line int, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Rule: rule, Line: line, Cause: errors.WithStack(cause)}
}

// As reports whether err (or something it wraps) is an *Error of the
// given Kind.
func As(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, reporting false otherwise — used by callers that need to
// preserve an inner template's Kind while attaching outer rule context.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
