package spec

import (
	"errors"
	"fmt"
)

// Sentinels for the failure classes a Parser reports. Use errors.Is to
// test for them; the concrete error is an *Error.
var (
	ErrEmptySource = errors.New("empty source")
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("parse error")
	ErrIO          = errors.New("i/o error")
	ErrTimeout     = errors.New("timeout")
)

// Error describes a failed load of a single Source.
type Error struct {
	Kind   error
	Source Source
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel e was classified as.
func (e *Error) Is(target error) bool { return target == e.Kind }

func parseError(src Source, err error) error {
	return &Error{Kind: ErrParse, Source: src, Err: err}
}
