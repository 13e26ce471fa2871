package meal

import "errors"

// Code classifies a catalogue failure.
type Code int

const (
	CodeUnknown         Code = iota
	CodeInvalidArgument      // bad price, difficulty, outcome or sort key
	CodeNotFound             // no row with the given key
	CodeDeleted              // row exists but is soft-deleted
	CodeDuplicateName        // uniqueness violation on create
	CodeStorage              // any other persistence failure
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeNotFound:
		return "not_found"
	case CodeDeleted:
		return "deleted"
	case CodeDuplicateName:
		return "duplicate_name"
	case CodeStorage:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every catalogue operation.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message != "" {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrDeleted         = &Error{Code: CodeDeleted}
	ErrDuplicateName   = &Error{Code: CodeDuplicateName}
	ErrStorage         = &Error{Code: CodeStorage}
)

// NewError creates an error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates an error that wraps an underlying cause.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain,
// or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
