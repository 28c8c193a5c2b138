package errors

import (
	"strings"
	"unicode"
)

// MaxNetIDLength bounds net identifiers read from input files.
const MaxNetIDLength = 256

// MaxGrid is the largest grid side the CLI and pipeline accept. A full batch
// at this size holds 8 × 4096² float64 cells (1 GiB). The wireimg package
// itself only requires a non-negative side.
const MaxGrid = 4096

// ValidateNetID validates a net identifier for display and cache-key safety.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of [MaxNetIDLength] bytes
func ValidateNetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNet, "net id cannot be empty")
	}

	if len(id) > MaxNetIDLength {
		return New(ErrCodeInvalidNet, "net id too long (max %d characters)", MaxNetIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNet, "net id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateGrid checks that a grid side is within [0, MaxGrid].
func ValidateGrid(grid int) error {
	if grid < 0 {
		return New(ErrCodeInvalidGrid, "grid must be non-negative, got %d", grid)
	}
	if grid > MaxGrid {
		return New(ErrCodeInvalidGrid, "grid %d exceeds maximum %d", grid, MaxGrid)
	}
	return nil
}

// ValidatePath validates a user-supplied file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
