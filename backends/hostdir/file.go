package hostdir

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-git/go-billy/v5"

	"github.com/ebogdum/archivefs/backends"
)

// File implements backends.FileBackend over an open billy file.
type File struct {
	file     billy.File
	fs       billy.Filesystem
	name     string
	writable bool
}

// Read reads from offset. Reaching the end of the file is not an error; the short
// count is returned instead.
func (f *File) Read(offset uint64, buf []byte) (int, error) {
	if offset > math.MaxInt64 {
		return 0, nil
	}
	n, err := f.file.ReadAt(buf, int64(offset))
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("failed to read %s: %w", f.name, err)
	}
	return n, nil
}

// Write writes data at offset, extending the file as needed
func (f *File) Write(offset uint64, data []byte, flush bool) (int, error) {
	if !f.writable {
		return 0, fmt.Errorf("file %s is not open for writing", f.name)
	}
	if offset > math.MaxInt64-uint64(len(data)) {
		return 0, fmt.Errorf("write of %d bytes at offset %d exceeds the maximum file size", len(data), offset)
	}
	if _, err := f.file.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek %s: %w", f.name, err)
	}
	n, err := f.file.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", f.name, err)
	}
	if flush {
		f.Flush()
	}
	return n, nil
}

// Size returns the current size of the file
func (f *File) Size() uint64 {
	info, err := f.fs.Stat(f.name)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

// SetSize truncates or zero-extends the file
func (f *File) SetSize(size uint64) bool {
	if !f.writable || size > math.MaxInt64 {
		return false
	}
	return f.file.Truncate(int64(size)) == nil
}

// Flush syncs the file when the underlying filesystem supports it
func (f *File) Flush() {
	if s, ok := f.file.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

// Close closes the underlying file
func (f *File) Close() bool {
	return f.file.Close() == nil
}

// Directory implements backends.DirectoryBackend over a snapshot of entries.
type Directory struct {
	entries []backends.Entry
	pos     int
}

// Read copies the next entries into out
func (d *Directory) Read(out []backends.Entry) (int, error) {
	n := copy(out, d.entries[d.pos:])
	d.pos += n
	return n, nil
}

// Close drops the snapshot
func (d *Directory) Close() bool {
	d.entries = nil
	d.pos = 0
	return true
}
