package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// nameRegex matches strategy and parameter names as they appear in presets:
// printable text without the preset field separator.
var nameRegex = regexp.MustCompile(`^[^|\r\n]+$`)

// ValidateName validates a strategy or parameter name.
//
// Names travel through the line-oriented preset format, so they must be
// non-empty, at most 128 characters, free of control characters and must
// not contain the "|" field separator.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "name contains the field separator: %q", name)
	}

	return nil
}

// ValidatePath validates a preset or graph data file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
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

// ValidateArchiveEntry validates the name of an entry read from a graph
// library archive. Entries must be relative and must not climb out of
// the archive root.
func ValidateArchiveEntry(name string) error {
	if err := ValidatePath(name); err != nil {
		return err
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPath, "archive entry must be relative (cannot start with /)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "archive entry cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPath, "archive entry cannot contain backslashes")
	}

	return nil
}
