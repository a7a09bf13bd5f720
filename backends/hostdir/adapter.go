// Package hostdir implements archive backends that pass through to a directory of a
// host filesystem. Every archive is confined to its own container directory.
package hostdir

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/pathutil"
	"github.com/ebogdum/archivefs/result"
)

// Archive implements backends.ArchiveBackend over a billy filesystem whose root is
// the archive root.
type Archive struct {
	name   string
	fs     billy.Filesystem
	logger *zap.Logger

	// writeOnly refuses reads and directory listings
	writeOnly bool
}

// NewArchive creates an archive backend rooted at the root of fs.
func NewArchive(name string, fs billy.Filesystem, logger *zap.Logger) *Archive {
	return &Archive{
		name:   name,
		fs:     fs,
		logger: logger,
	}
}

// Name returns the archive name
func (a *Archive) Name() string {
	return a.name
}

// resolve converts a guest path into a cleaned absolute name within the archive
func (a *Archive) resolve(p backends.Path) (string, error) {
	s, err := p.AsString()
	if err != nil {
		return "", result.Wrap(result.ErrInvalidPath, err)
	}
	return pathutil.Clean(s)
}

// OpenFile opens a file for reading and, if requested, writing
func (a *Archive) OpenFile(p backends.Path, mode backends.Mode) (backends.FileBackend, error) {
	if a.writeOnly && mode.Read {
		return nil, result.Wrapf(result.ErrInvalidOpenFlags, "%s is write-only", a.name)
	}

	name, err := a.resolve(p)
	if err != nil {
		return nil, err
	}

	if info, err := a.fs.Stat(name); err == nil && info.IsDir() {
		return nil, result.Wrapf(result.ErrFileNotFound, "%s is a directory", name)
	}

	flag := os.O_RDONLY
	if mode.Write {
		flag = os.O_RDWR
	}
	if mode.Create {
		flag |= os.O_CREATE
	}

	f, err := a.fs.OpenFile(name, flag, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, result.Wrap(result.ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}

	a.logger.Debug("File opened",
		zap.String("archive", a.name),
		zap.String("path", name),
		zap.Bool("writable", mode.Write))

	return &File{file: f, fs: a.fs, name: name, writable: mode.Write}, nil
}

// DeleteFile removes a regular file
func (a *Archive) DeleteFile(p backends.Path) bool {
	name, err := a.resolve(p)
	if err != nil {
		return false
	}
	info, err := a.fs.Stat(name)
	if err != nil || info.IsDir() {
		return false
	}
	return a.fs.Remove(name) == nil
}

// RenameFile moves a regular file within the archive
func (a *Archive) RenameFile(src, dst backends.Path) bool {
	return a.rename(src, dst, false)
}

// DeleteDirectory removes an empty directory
func (a *Archive) DeleteDirectory(p backends.Path) bool {
	name, err := a.resolve(p)
	if err != nil || name == "/" {
		return false
	}
	info, err := a.fs.Stat(name)
	if err != nil || !info.IsDir() {
		return false
	}
	return a.fs.Remove(name) == nil
}

// CreateFile creates a new file of the given size filled with zeros
func (a *Archive) CreateFile(p backends.Path, size uint32) error {
	name, err := a.resolve(p)
	if err != nil {
		return err
	}

	if _, err := a.fs.Stat(name); err == nil {
		return result.ErrAlreadyExists
	}

	f, err := a.fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return result.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create file %s: %w", name, err)
	}
	defer f.Close()

	if size > 0 {
		if err := f.Truncate(int64(size)); err != nil {
			// Clean up partially created file
			_ = a.fs.Remove(name)
			return fmt.Errorf("failed to size file %s: %w", name, err)
		}
	}

	a.logger.Debug("File created",
		zap.String("archive", a.name),
		zap.String("path", name),
		zap.Uint32("size", size))

	return nil
}

// CreateDirectory creates a directory whose parent already exists
func (a *Archive) CreateDirectory(p backends.Path) bool {
	name, err := a.resolve(p)
	if err != nil {
		return false
	}
	if _, err := a.fs.Stat(name); err == nil {
		return false
	}
	if parent := path.Dir(name); parent != "/" {
		info, err := a.fs.Stat(parent)
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return a.fs.MkdirAll(name, 0755) == nil
}

// RenameDirectory moves a directory within the archive
func (a *Archive) RenameDirectory(src, dst backends.Path) bool {
	return a.rename(src, dst, true)
}

func (a *Archive) rename(src, dst backends.Path, dir bool) bool {
	from, err := a.resolve(src)
	if err != nil {
		return false
	}
	to, err := a.resolve(dst)
	if err != nil {
		return false
	}
	info, err := a.fs.Stat(from)
	if err != nil || info.IsDir() != dir {
		return false
	}
	if _, err := a.fs.Stat(to); err == nil {
		return false
	}
	return a.fs.Rename(from, to) == nil
}

// OpenDirectory snapshots the children of a directory for listing
func (a *Archive) OpenDirectory(p backends.Path) (backends.DirectoryBackend, error) {
	if a.writeOnly {
		return nil, result.Wrapf(result.ErrInvalidOpenFlags, "%s cannot be listed", a.name)
	}

	name, err := a.resolve(p)
	if err != nil {
		return nil, err
	}

	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", name)
	}

	infos, err := a.fs.ReadDir(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", name, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]backends.Entry, 0, len(infos))
	for _, child := range infos {
		entries = append(entries, backends.NewEntry(child.Name(), child.IsDir(), uint64(child.Size())))
	}

	return &Directory{entries: entries}, nil
}

// Close releases the archive. The host filesystem needs no teardown.
func (a *Archive) Close() error {
	a.logger.Debug("Archive closed", zap.String("archive", a.name))
	return nil
}
