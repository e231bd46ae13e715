package errors

import (
	"strings"
	"unicode"
)

// MaxTitleLength bounds layout titles.
const MaxTitleLength = 100

// ValidateTitle validates a layout title.
//
// The rules are basic shape checks only:
//   - No empty or whitespace-only titles
//   - No control characters
//   - Maximum length of MaxTitleLength runes
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidTitle, "layout title cannot be empty")
	}

	if n := len([]rune(title)); n > MaxTitleLength {
		return New(ErrCodeInvalidTitle, "layout title too long (max %d characters)", MaxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTitle, "layout title contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates a local file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
