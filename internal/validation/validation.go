// Package validation checks user-supplied paths and turns document names
// into safe output file names.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
)

// ValidatePath rejects empty paths, overlong paths and paths containing
// NUL or control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateFilename checks that filename is a single safe path element.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	// Would be read as a flag by other tools.
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// SanitizeFilename makes a document name usable as a file name: separators
// become underscores, control characters and leading hyphens or dots are
// dropped.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)

	var cleaned strings.Builder
	for _, r := range name {
		if !unicode.IsControl(r) {
			cleaned.WriteRune(r)
		}
	}
	name = strings.TrimLeft(cleaned.String(), "-.")

	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	return name, nil
}

// OutputPath joins dir with the sanitized document name plus ext and checks
// that the result stays inside dir.
func OutputPath(dir, docName, ext string) (string, error) {
	if err := ValidatePath(dir); err != nil {
		return "", err
	}
	name, err := SanitizeFilename(docName)
	if err != nil {
		return "", fmt.Errorf("document %q: %w", docName, err)
	}
	if err := ValidateFilename(name + ext); err != nil {
		return "", err
	}

	full := filepath.Join(dir, name+ext)
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return full, nil
}
