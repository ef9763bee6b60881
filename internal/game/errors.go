package game

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable class of an engine error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidWord       Kind = "invalid_word"
	KindHardModeViolation Kind = "hard_mode_violation"
	KindInvalidState      Kind = "invalid_state"
	KindInternal          Kind = "internal"
)

// Error is an engine error with a kind and a human-readable message.
// Letter and Position describe the broken requirement of a hard-mode
// violation; Position is -1 when only presence was required.
type Error struct {
	Kind     Kind
	Message  string
	Letter   string
	Position int
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "session not found", Position: -1}
	ErrInvalidWord  = &Error{Kind: KindInvalidWord, Message: "invalid word", Position: -1}
	ErrHardMode     = &Error{Kind: KindHardModeViolation, Message: "hard mode violation", Position: -1}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state", Position: -1}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error", Position: -1}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Position: -1}
}

// KindOf reports the kind of err. Errors that carry no kind are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
