package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Re-exports so callers need a single errors import.
var (
	New    = errors.New
	Errorf = errors.Errorf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
)

// Exit codes for the aictl CLI, one per fatal error category.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitConfig indicates a configuration document was malformed or unreadable.
	ExitConfig = 1

	// ExitLock indicates another invocation holds a live lock.
	ExitLock = 2

	// ExitValidation indicates a loaded document violated structural constraints.
	ExitValidation = 3

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 4
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrUnknownClient indicates the client name is not in the supported set.
	ErrUnknownClient = errors.New("unknown client")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitError wraps an error with an exit code and optional suggestion for the CLI.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewConfigError creates an ExitError with ExitConfig code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitConfig,
		Suggestion: "Run: aictl doctor",
	}
}

// NewLockError creates an ExitError with ExitLock code.
func NewLockError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitLock,
		Suggestion: "Wait for the other aictl invocation to finish, or remove a stale lock file",
	}
}

// NewValidationError creates an ExitError with ExitValidation code.
func NewValidationError(err error) *ExitError {
	return &ExitError{
		Err:  err,
		Code: ExitValidation,
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

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
