// Package errors provides error types with actionable suggestions for
// the reqpin application. Errors include contextual information to help
// users resolve issues quickly.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a manifest parsing failure.
	ErrParse = errors.New("parse error")
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrRegistry indicates a package registry (PyPI) failure.
	ErrRegistry = errors.New("registry error")
	// ErrNetwork indicates a network-related error.
	ErrNetwork = errors.New("network error")
	// ErrTimeout indicates a timeout occurred.
	ErrTimeout = errors.New("timeout error")
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")
)

// ReqpinError is the base error type for reqpin errors.
// It wraps an underlying error and provides additional context.
type ReqpinError struct {
	// Kind is the category of error (e.g., ErrParse, ErrRegistry).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., file path, package name).
	Details map[string]string
}

// Error implements the error interface.
func (e *ReqpinError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *ReqpinError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether any error in err's chain matches the target.
func (e *ReqpinError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with suggestions.
func (e *ReqpinError) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, e.Details[k]))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *ReqpinError) WithDetails(key, value string) *ReqpinError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause of the error.
func (e *ReqpinError) WithCause(cause error) *ReqpinError {
	e.Cause = cause
	return e
}

// New creates a new ReqpinError with the given kind and message.
func New(kind error, message string) *ReqpinError {
	return &ReqpinError{Kind: kind, Message: message}
}

// Newf creates a new ReqpinError with a formatted message.
func Newf(kind error, format string, args ...any) *ReqpinError {
	return &ReqpinError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and message.
func Wrap(kind error, message string, cause error) *ReqpinError {
	return &ReqpinError{Kind: kind, Message: message, Cause: cause}
}

// IsRetryable returns true if the error is likely transient and retrying
// may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *ReqpinError
	if errors.As(err, &re) {
		switch re.Kind {
		case ErrNetwork, ErrTimeout:
			return true
		default:
			return false
		}
	}
	return false
}

// IsUserError returns true if the error is due to user misconfiguration
// or malformed input rather than an external failure.
func IsUserError(err error) bool {
	var re *ReqpinError
	if errors.As(err, &re) {
		switch re.Kind {
		case ErrConfig, ErrParse:
			return true
		default:
			return false
		}
	}
	return false
}
