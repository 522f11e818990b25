// Package errors provides error types for reqpin.
// This file contains manifest parsing and file errors.
package errors

import (
	"fmt"
)

// ManifestNotFound creates an error for a missing requirements file.
func ManifestNotFound(path string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("requirements file not found: %s", path),
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `Check the path, or let reqpin discover manifests:

  reqpin lint              # lints every requirements file in the tree
  reqpin lint path/to/requirements.txt`,
	}
}

// ManifestReadError creates an error for an unreadable requirements file.
func ManifestReadError(path string, cause error) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrParse,
		Message: fmt.Sprintf("failed to read requirements file: %s", path),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
	}
}

// InvalidLine creates an error for a line that failed to parse.
func InvalidLine(path string, line int, cause error) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrParse,
		Message: fmt.Sprintf("%s:%d: invalid requirement", path, line),
		Cause:   cause,
		Details: map[string]string{
			"path": path,
			"line": fmt.Sprintf("%d", line),
		},
		Suggestion: `Each non-blank, non-comment line must be a version pin:

  name==version          # e.g. numpy==1.26.4

Comments start with '#'; pip option lines (-r, -e, --index-url) belong
in pip's own configuration, not in a pinned manifest.`,
	}
}

// PackageNotInManifest creates an error for an absent package.
func PackageNotInManifest(name, path string) *ReqpinError {
	return &ReqpinError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("package %q is not in the manifest", name),
		Details: map[string]string{
			"package": name,
			"path":    path,
		},
	}
}
