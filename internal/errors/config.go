// Package errors provides error types for reqpin.
// This file contains configuration-related errors.
package errors

import (
	"fmt"
	"strings"
)

// ConfigNotFound creates an error for missing configuration.
func ConfigNotFound(configPath string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("configuration file not found: %s", configPath),
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Create a config file:

  reqpin init

or run without one — every setting has a default.`,
	}
}

// ConfigParseError creates an error for YAML parsing failures.
func ConfigParseError(configPath string, parseErr error) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("failed to parse configuration: %s", configPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check your .reqpin.yaml for syntax errors:
  1. Ensure proper YAML indentation (use spaces, not tabs)
  2. Check for missing colons or quotes`,
	}
}

// ConfigValidationError creates an error for invalid configuration values.
func ConfigValidationError(field, message string, validOptions []string) *ReqpinError {
	suggestion := fmt.Sprintf("Fix the %q field in .reqpin.yaml", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &ReqpinError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}

// UnknownLintRule creates an error for an unrecognized rule ID in config.
func UnknownLintRule(ruleID string, known []string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("unknown lint rule %q", ruleID),
		Details: map[string]string{
			"rule": ruleID,
		},
		Suggestion: fmt.Sprintf("Known rules: %s", strings.Join(known, ", ")),
	}
}
