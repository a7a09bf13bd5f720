package pathutil

import (
	"testing"

	"github.com/ebogdum/archivefs/result"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{
			name:     "empty path",
			input:    "",
			expected: "/",
		},
		{
			name:     "simple path",
			input:    "file.txt",
			expected: "/file.txt",
		},
		{
			name:     "absolute path",
			input:    "/save.bin",
			expected: "/save.bin",
		},
		{
			name:     "nested path",
			input:    "/dir/subdir/file.txt",
			expected: "/dir/subdir/file.txt",
		},
		{
			name:     "root path",
			input:    "/",
			expected: "/",
		},
		{
			name:        "directory traversal",
			input:       "../../../etc/passwd",
			shouldError: true,
		},
		{
			name:        "absolute traversal",
			input:       "/../etc/passwd",
			shouldError: true,
		},
		{
			name:        "mixed traversal",
			input:       "dir/../../../etc/passwd",
			shouldError: true,
		},
		{
			name:     "safe relative navigation",
			input:    "dir/../file.txt",
			expected: "/file.txt",
		},
		{
			name:     "current directory",
			input:    "./file.txt",
			expected: "/file.txt",
		},
		{
			name:     "multiple slashes",
			input:    "dir//file.txt",
			expected: "/dir/file.txt",
		},
		{
			name:     "trailing slash",
			input:    "dir/",
			expected: "/dir",
		},
		{
			name:        "null byte",
			input:       "file\x00.txt",
			shouldError: true,
		},
		{
			name:        "control character",
			input:       "/save\n.bin",
			shouldError: true,
		},
		{
			name:     "container path with spaces",
			input:    "/Nintendo 3DS/title/00040000/00030800/data/",
			expected: "/Nintendo 3DS/title/00040000/00030800/data",
		},
		{
			name:     "climb back to root",
			input:    "/extdata/../..x",
			expected: "/..x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.input)

			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error for input %q, got none", tt.input)
				}
				if err != result.ErrInvalidPath {
					t.Errorf("expected ErrInvalidPath, got %v", err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for input %q: %v", tt.input, err)
				}
				if got != tt.expected {
					t.Errorf("for input %q, expected %q, got %q", tt.input, tt.expected, got)
				}
			}
		})
	}
}
