package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid document, bad flags, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (schema loading, I/O, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrUnknownFormat indicates a document format that cannot be decoded.
	ErrUnknownFormat = crdb.New("unknown document format")

	// ErrSchemaRequired indicates no schema name was given or could be inferred.
	ErrSchemaRequired = crdb.New("schema name is required")
)

// New creates an error with a stack trace.
func New(msg string) error {
	return crdb.NewWithDepth(1, msg)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return crdb.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. It returns nil when err is nil.
func Wrap(err error, msg string) error {
	return crdb.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil when err is nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.WrapWithDepthf(1, err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return crdb.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crdb.As(err, target)
}

// Unwrap returns the next error in err's chain, if any.
func Unwrap(err error) error {
	return crdb.Unwrap(err)
}

// Join returns an error that wraps the given errors. Nil errors are discarded.
func Join(errs ...error) error {
	return crdb.Join(errs...)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check the file passed with --config or $SPECVAL_CONFIG",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code carried by err, ExitSuccess for nil and
// ExitSystem for errors that carry no code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}
