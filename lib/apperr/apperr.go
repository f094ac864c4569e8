// Package apperr holds the failure taxonomy shared by the tools.
// Every error surfaced at a user action boundary carries one Kind.
package apperr

import (
	"errors"

	"golang.org/x/xerrors"
)

type Kind int

const (
	_ Kind = iota
	InvalidInput
	DecodeError
	NetworkError
	EmptyResult
)

var kindNames = [...]string{
	InvalidInput: "invalid input",
	DecodeError:  "decode error",
	NetworkError: "network error",
	EmptyResult:  "empty result",
}

// Kind is error itself so that errors.Is(err, apperr.EmptyResult) works.
func (k Kind) Error() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown error"
}

type Error struct {
	Kind Kind
	Op   string // operation which failed, may be empty
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New makes error of given kind with formatted cause.
func New(k Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: k, Op: op, Err: xerrors.Errorf(format, args...)}
}

// Wrap attaches kind to err. nil stays nil.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Err: err}
}

// KindOf returns kind of first *Error in chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
