package clip

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure by the stage that produced it
type Kind int

const (
	KindUnspecified Kind = iota
	KindUsage
	KindValidation
	KindFetch
	KindArtifactNotFound
	KindAmbiguousArtifact
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage error"
	case KindValidation:
		return "validation error"
	case KindFetch:
		return "fetch error"
	case KindArtifactNotFound:
		return "artifact not found"
	case KindAmbiguousArtifact:
		return "ambiguous artifact"
	default:
		return "unspecified error"
	}
}

// Error is the single error type a clip job surfaces to its caller.
// Message is what ends up in the failure payload.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so errors.Is(err, ErrFetch) works
// for any fetch failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrUsage             = &Error{Kind: KindUsage}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrFetch             = &Error{Kind: KindFetch}
	ErrArtifactNotFound  = &Error{Kind: KindArtifactNotFound}
	ErrAmbiguousArtifact = &Error{Kind: KindAmbiguousArtifact}
	ErrUnspecified       = &Error{Kind: KindUnspecified}
)

// KindOf returns the kind of err, or KindUnspecified if err is not a *Error
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnspecified
}

// NewUsageError creates a usage error with the given message
func NewUsageError(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError creates a validation error with the given message
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewFetchError wraps a probe or download failure
func NewFetchError(err error) *Error {
	return &Error{
		Kind:    KindFetch,
		Message: "Failed to download video: " + err.Error(),
		Err:     err,
	}
}

// Unspecified wraps err as an unspecified failure unless it already is a *Error
func Unspecified(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: KindUnspecified, Message: err.Error(), Err: err}
}
