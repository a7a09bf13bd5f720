// Package backends defines the capability contracts implemented by archive storage
// backends and their factories. Concrete implementations live in sub-packages.
package backends

// ArchiveFactory produces backend instances for one archive type and performs
// type-level maintenance.
type ArchiveFactory interface {
	// Name returns a human readable name for the archive type
	Name() string

	// Open opens a new instance of the archive addressed by path
	Open(path Path) (ArchiveBackend, error)

	// Format erases the archive addressed by path and leaves it empty
	Format(path Path) error
}

// ArchiveBackend performs archive-level operations on one open archive.
// Delete, create and rename operations report whether they took effect.
type ArchiveBackend interface {
	// Name returns a human readable name for the open archive
	Name() string

	// OpenFile opens the file at path with the given mode
	OpenFile(path Path, mode Mode) (FileBackend, error)

	// DeleteFile removes the file at path
	DeleteFile(path Path) bool

	// RenameFile moves the file at src to dst within this archive
	RenameFile(src, dst Path) bool

	// DeleteDirectory removes the empty directory at path
	DeleteDirectory(path Path) bool

	// CreateFile creates a file of the given size at path
	CreateFile(path Path, size uint32) error

	// CreateDirectory creates the directory at path
	CreateDirectory(path Path) bool

	// RenameDirectory moves the directory at src to dst within this archive
	RenameDirectory(src, dst Path) bool

	// OpenDirectory opens the directory at path for listing
	OpenDirectory(path Path) (DirectoryBackend, error)

	// Close releases the resources held by the archive instance
	Close() error
}

// FileBackend reads and writes one open file. Transfers may be shorter than
// requested; the returned count is authoritative.
type FileBackend interface {
	// Read reads up to len(buf) bytes starting at offset
	Read(offset uint64, buf []byte) (int, error)

	// Write writes data starting at offset, flushing afterwards if flush is set
	Write(offset uint64, data []byte, flush bool) (int, error)

	// Size returns the current file size
	Size() uint64

	// SetSize truncates or extends the file
	SetSize(size uint64) bool

	// Flush commits buffered writes
	Flush()

	// Close releases the file
	Close() bool
}

// DirectoryBackend lists one open directory.
type DirectoryBackend interface {
	// Read fills entries with the next directory entries and returns how many were
	// written. Fewer than len(entries) means the listing is exhausted.
	Read(entries []Entry) (int, error)

	// Close releases the directory
	Close() bool
}
