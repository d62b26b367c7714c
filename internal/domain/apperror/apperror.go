// Package apperror defines the business error taxonomy shared by the domain,
// usecase and delivery layers.
package apperror

import "errors"

// Kind classifies a business failure. The delivery layer maps kinds to
// status codes; anything that is not an *Error is treated as unexpected.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAvailability
	KindConflict
	KindState
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAvailability:
		return "availability"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a recoverable business error carrying a stable machine code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error   { return New(KindValidation, code, message) }
func Availability(code, message string) *Error { return New(KindAvailability, code, message) }
func Conflict(code, message string) *Error     { return New(KindConflict, code, message) }
func State(code, message string) *Error        { return New(KindState, code, message) }
func NotFound(code, message string) *Error     { return New(KindNotFound, code, message) }

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so copies produced by WithDetails/WithMessage still
// satisfy errors.Is against the declared sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or false for unexpected errors.
func KindOf(err error) (Kind, bool) {
	appErr, ok := As(err)
	if !ok {
		return 0, false
	}
	return appErr.Kind, true
}
