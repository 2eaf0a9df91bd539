// Package errors provides error handling conventions for the aictl CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// mapping the error taxonomy to process exit statuses.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, aierrors.ErrNotFound) {
//	    // handle not found case
//	}
//
// # Exit Codes
//
// Fatal error categories map to distinct exit codes so scripts can tell
// a malformed configuration apart from a held lock:
//
//   - ExitSuccess (0): command completed; soft failures are reported as
//     data in the emitted summary and still exit zero
//   - ExitConfig (1): a configuration document was malformed or unreadable
//   - ExitLock (2): another invocation holds a live lock
//   - ExitValidation (3): a loaded document violated structural constraints
//   - ExitSystem (4): I/O, permissions, or other system-level failure
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports unwrapping via [errors.Unwrap] and [errors.As]:
//
//	var exitErr *aierrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
