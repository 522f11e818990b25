// Package errors provides error types for reqpin.
// This file contains registry (PyPI) and network errors.
package errors

import (
	"fmt"
	"time"
)

// RegistryUnavailable creates an error for registry connectivity issues.
func RegistryUnavailable(host string, cause error) *ReqpinError {
	err := &ReqpinError{
		Kind:    ErrNetwork,
		Message: "package registry unavailable",
		Cause:   cause,
		Suggestion: `Check your network connection:

  1. Verify internet connectivity
  2. Check if a VPN or firewall is blocking access
  3. Try: curl -I https://pypi.org/simple/

If you use a mirror, set it in .reqpin.yaml:
  registry:
    index_url: https://mirror.example.org`,
	}
	if host != "" {
		err.Details = map[string]string{"host": host}
	}
	return err
}

// PackageNotFound creates an error for a package the registry does not know.
func PackageNotFound(name string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("package %q not found on the registry", name),
		Details: map[string]string{
			"package": name,
		},
		Suggestion: `Check the spelling of the package name. Names are compared
case-insensitively with '-', '_', and '.' treated as equivalent.`,
	}
}

// RegistryStatusError creates an error for an unexpected registry response.
func RegistryStatusError(name string, status int) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrRegistry,
		Message: fmt.Sprintf("registry returned HTTP %d for %q", status, name),
		Details: map[string]string{
			"package": name,
			"status":  fmt.Sprintf("%d", status),
		},
		Suggestion: "The registry may be having problems. Try again later.",
	}
}

// RegistryDecodeError creates an error for an unparseable registry payload.
func RegistryDecodeError(name string, cause error) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrRegistry,
		Message: fmt.Sprintf("failed to decode registry response for %q", name),
		Cause:   cause,
		Details: map[string]string{
			"package": name,
		},
	}
}

// OperationTimeout creates a generic timeout error.
func OperationTimeout(operation string, elapsed time.Duration) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s timed out after %v", operation, elapsed.Round(time.Second)),
		Details: map[string]string{
			"operation": operation,
			"elapsed":   elapsed.Round(time.Second).String(),
		},
		Suggestion: `The operation took too long. Raise the timeout in .reqpin.yaml:
  registry:
    timeout: 30s`,
	}
}

// ContextCancelled creates an error for cancelled operations.
func ContextCancelled(operation string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s was cancelled", operation),
		Details: map[string]string{
			"operation": operation,
		},
	}
}
