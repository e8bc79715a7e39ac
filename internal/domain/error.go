package domain

import (
	"errors"
	"fmt"
)

// Code classifies an invocation failure.
type Code int

const (
	CodeUnknown Code = iota + 1
	CodeMultipleClipSelectionNotSupported
	CodeNoAudioSelected
	CodeCancel
	CodeEffectBusy
	CodeNotFound
)

func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "UnknownError"
	case CodeMultipleClipSelectionNotSupported:
		return "EffectMultipleClipSelectionNotSupported"
	case CodeNoAudioSelected:
		return "EffectNoAudioSelected"
	case CodeCancel:
		return "Cancel"
	case CodeEffectBusy:
		return "EffectBusy"
	case CodeNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is a result with a code and a message.
type Error struct {
	Code Code
	Text string
}

func (e *Error) Error() string {
	if e.Text == "" {
		return e.Code.String()
	}
	return e.Text
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError builds an *Error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Text: fmt.Sprintf(format, args...)}
}

var (
	// ErrUnknown indicates a violated internal invariant.
	ErrUnknown = &Error{Code: CodeUnknown, Text: "unknown error"}

	// ErrMultipleClipSelectionNotSupported is returned when several clips are
	// selected and the effect can only handle one.
	ErrMultipleClipSelectionNotSupported = &Error{Code: CodeMultipleClipSelectionNotSupported, Text: "this effect cannot be applied to multiple clips"}

	// ErrNoAudioSelected is returned for processors invoked without a selection.
	ErrNoAudioSelected = &Error{Code: CodeNoAudioSelected, Text: "no audio selected"}

	// ErrCancel is the user declining. It is not reported as a failure.
	ErrCancel = &Error{Code: CodeCancel, Text: "cancelled"}

	// ErrEffectBusy is returned when the effect is already mid-invocation.
	ErrEffectBusy = &Error{Code: CodeEffectBusy, Text: "effect is already running"}

	// ErrNotFound indicates a missing effect, track or clip.
	ErrNotFound = &Error{Code: CodeNotFound, Text: "not found"}
)

// IsCancel reports whether err is a user cancellation.
func IsCancel(err error) bool {
	return errors.Is(err, ErrCancel)
}

// CodeOf extracts the code of err, CodeUnknown for foreign errors and 0 for nil.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
