package errors

import (
	"sort"
	"strings"
	"unicode"
)

// ValidatePath validates an output file path for safety.
// It rejects empty paths, control characters and null bytes.
//
// Unlike repository paths, output paths may be absolute; the CLI writes
// wherever the user points it.
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

// ValidateFormat checks that format is one of the allowed output formats.
// The comparison is case-insensitive.
func ValidateFormat(format string, allowed map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !allowed[strings.ToLower(format)] {
		names := make([]string, 0, len(allowed))
		for name := range allowed {
			names = append(names, name)
		}
		sort.Strings(names)
		return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", format, strings.Join(names, ", "))
	}
	return nil
}
