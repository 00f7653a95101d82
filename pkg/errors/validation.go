package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateExampleID validates a corpus example identifier.
// IDs appear in cache keys, log lines and rendered file names, so the rules
// are conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateExampleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "example id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "example id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "example id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "example id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateThreshold checks that an IoU threshold lies in [0, 1).
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return New(ErrCodeInvalidOptions, "threshold must be in [0, 1), got %v", v)
	}
	return nil
}

// ValidateEpsilon checks that the numeric tolerance is positive and small.
func ValidateEpsilon(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return New(ErrCodeInvalidOptions, "epsilon must be in (0, 1), got %v", v)
	}
	return nil
}
