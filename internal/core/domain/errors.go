// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of any transport
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInconsistency
	KindStoreUnavailable
	KindNotImplemented
	KindSerialization
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInconsistency:
		return "inconsistency"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindNotImplemented:
		return "not_implemented"
	case KindSerialization:
		return "serialization"
	default:
		return "internal"
	}
}

// Error is a classified failure carrying a human readable message
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrInconsistency    = &Error{Kind: KindInconsistency}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrNotImplemented   = &Error{Kind: KindNotImplemented}
	ErrSerialization    = &Error{Kind: KindSerialization}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func Inconsistencyf(format string, args ...any) *Error {
	return newError(KindInconsistency, format, args...)
}

func NotImplementedf(format string, args ...any) *Error {
	return newError(KindNotImplemented, format, args...)
}

// Wrap classifies a lower level error, keeping it as the cause
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// WithNotFound replaces the message of a NotFound error so the caller can
// phrase it for the operation at hand. Other errors pass through unchanged.
func WithNotFound(err error, format string, args ...any) error {
	if err == nil || KindOf(err) != KindNotFound {
		return err
	}
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...), Err: err}
}
