package errors

import (
	"strings"
	"unicode"
)

// ValidatePositive validates that a numeric option is greater than zero.
// The field name is included in the message so CLI users see which flag
// or config key to fix.
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %d", field, value)
	}
	return nil
}

// ValidateNonNegative validates that a numeric option is zero or greater.
// Used for limits where zero means "unlimited".
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return New(ErrCodeInvalidInput, "%s cannot be negative, got %d", field, value)
	}
	return nil
}

// ValidateRange validates that a numeric option lies within [min, max].
func ValidateRange(field string, value, min, max int) error {
	if value < min || value > max {
		return New(ErrCodeInvalidInput, "%s must be between %d and %d, got %d", field, min, max, value)
	}
	return nil
}

// ValidateDimension validates a canvas dimension (width or height).
// Dimensions below 16 units produce degenerate layouts where every cell
// collapses under the padding, so they are rejected up front.
func ValidateDimension(field string, value float64) error {
	if value < 16 {
		return New(ErrCodeInvalidInput, "%s must be at least 16, got %g", field, value)
	}
	return nil
}

// ValidateOutputPath validates a destination file path for render output.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No trailing path separator (must name a file, not a directory)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path must name a file, not a directory")
	}

	return nil
}
