// Package errors provides error handling conventions for the specval CLI.
//
// It wraps [github.com/cockroachdb/errors] so every package in the module
// creates and wraps errors the same way, defines sentinel errors for common
// failure conditions, an ExitError type for CLI exit code handling, and exit
// code constants following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found case
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): The document is invalid or the input was wrong
//   - ExitSystem (2): Schemas could not be loaded, I/O failed, etc.
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports unwrapping via [Unwrap] and [As]:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
