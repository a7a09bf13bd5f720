// Package pathutil provides secure handling of guest archive paths.
package pathutil

import (
	"path"
	"strings"

	"github.com/ebogdum/archivefs/result"
)

// Clean normalizes a guest path to an absolute, slash-separated form.
// It performs the following checks:
// 1. Rejects null bytes and control characters
// 2. Resolves "." and ".." components
// 3. Rejects paths that climb above the archive root
func Clean(p string) (string, error) {
	if err := ValidatePath(p); err != nil {
		return "", err
	}
	if p == "" {
		return "/", nil
	}

	// Simulate resolution to see whether the path stays within the root.
	depth := 0
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			depth--
			if depth < 0 {
				return "", result.ErrInvalidPath
			}
		default:
			depth++
		}
	}

	return path.Clean("/" + strings.TrimPrefix(p, "/")), nil
}

// ValidatePath checks for characters that are never valid in a guest path.
func ValidatePath(p string) error {
	// Check for null bytes (can be used to bypass file extension checks)
	if strings.Contains(p, "\x00") {
		return result.ErrInvalidPath
	}

	// Check for control characters
	for _, char := range p {
		if char < 32 && char != '\t' {
			return result.ErrInvalidPath
		}
	}

	return nil
}
