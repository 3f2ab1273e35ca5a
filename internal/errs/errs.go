// Package errs defines the error kinds surfaced at the boundary of the
// synthesis core (see the error handling design in the project notes).
// The core never recovers from an error: a worker aborts on the first Err.
package errs

import "fmt"

// Kind classifies a failure so callers can react without string matching.
type Kind string

const (
	ParseError          Kind = "ParseError"
	InvalidName         Kind = "InvalidName"
	OutOfRange          Kind = "OutOfRange"
	UnknownContext      Kind = "UnknownContext"
	DuplicateRegulation Kind = "DuplicateRegulation"
	NoContextMatch      Kind = "NoContextMatch"
	MalformedBits       Kind = "MalformedBits"
	StateExplosion      Kind = "StateExplosion"
	BatchMismatch       Kind = "BatchMismatch"
	IoError             Kind = "IoError"
)

// Error wraps a Kind with a message and an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a Kind-tagged error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a Kind, preserving it for Unwrap/errors.Is.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is lets errors.Is match on Kind alone via errs.New(kind, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
