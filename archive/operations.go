package archive

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/result"
)

// resolve returns the backend behind h or ErrInvalidHandle
func (m *Manager) resolve(h Handle) (backends.ArchiveBackend, error) {
	backend, ok := m.archives[h]
	if !ok {
		return nil, result.ErrInvalidHandle
	}
	return backend, nil
}

// CreateFileInArchive creates a file of size bytes at path.
func (m *Manager) CreateFileInArchive(h Handle, path backends.Path, size uint32) error {
	backend, err := m.resolve(h)
	if err != nil {
		return m.observe("create_file", err)
	}

	if err := backend.CreateFile(path, size); err != nil {
		m.logger.Debug("Failed to create file",
			logfield.Handle(uint64(h)),
			logfield.Path(path),
			zap.Error(err))
		return m.observe("create_file", err)
	}

	m.logger.Info("File created successfully",
		logfield.Handle(uint64(h)),
		logfield.Path(path),
		zap.Uint32("size", size))

	return m.observe("create_file", nil)
}

// DeleteFileFromArchive removes the file at path.
func (m *Manager) DeleteFileFromArchive(h Handle, path backends.Path) error {
	backend, err := m.resolve(h)
	if err != nil {
		return m.observe("delete_file", err)
	}
	if !backend.DeleteFile(path) {
		return m.observe("delete_file", result.ErrNoEffect)
	}

	m.logger.Info("File deleted successfully",
		logfield.Handle(uint64(h)),
		logfield.Path(path))

	return m.observe("delete_file", nil)
}

// CreateDirectoryFromArchive creates the directory at path.
func (m *Manager) CreateDirectoryFromArchive(h Handle, path backends.Path) error {
	backend, err := m.resolve(h)
	if err != nil {
		return m.observe("create_directory", err)
	}
	if !backend.CreateDirectory(path) {
		return m.observe("create_directory", result.ErrNoEffect)
	}

	m.logger.Info("Directory created successfully",
		logfield.Handle(uint64(h)),
		logfield.Path(path))

	return m.observe("create_directory", nil)
}

// DeleteDirectoryFromArchive removes the empty directory at path.
func (m *Manager) DeleteDirectoryFromArchive(h Handle, path backends.Path) error {
	backend, err := m.resolve(h)
	if err != nil {
		return m.observe("delete_directory", err)
	}
	if !backend.DeleteDirectory(path) {
		return m.observe("delete_directory", result.ErrNoEffect)
	}

	m.logger.Info("Directory deleted successfully",
		logfield.Handle(uint64(h)),
		logfield.Path(path))

	return m.observe("delete_directory", nil)
}

// RenameFileBetweenArchives moves a file. Both handles must refer to the same
// archive instance; moving between instances is not supported.
func (m *Manager) RenameFileBetweenArchives(srcHandle Handle, src backends.Path, dstHandle Handle, dst backends.Path) error {
	return m.observe("rename_file", m.rename(srcHandle, src, dstHandle, dst, backends.ArchiveBackend.RenameFile))
}

// RenameDirectoryBetweenArchives moves a directory. Both handles must refer to the
// same archive instance; moving between instances is not supported.
func (m *Manager) RenameDirectoryBetweenArchives(srcHandle Handle, src backends.Path, dstHandle Handle, dst backends.Path) error {
	return m.observe("rename_directory", m.rename(srcHandle, src, dstHandle, dst, backends.ArchiveBackend.RenameDirectory))
}

func (m *Manager) rename(srcHandle Handle, src backends.Path, dstHandle Handle, dst backends.Path,
	op func(backends.ArchiveBackend, backends.Path, backends.Path) bool) error {
	srcArchive, err := m.resolve(srcHandle)
	if err != nil {
		return err
	}
	dstArchive, err := m.resolve(dstHandle)
	if err != nil {
		return err
	}

	if srcHandle != dstHandle && !sameBackend(srcArchive, dstArchive) {
		m.logger.Warn("Rename between different archive instances is not supported",
			zap.Stringer("source_handle", srcHandle),
			zap.Stringer("target_handle", dstHandle))
		return result.Wrapf(result.ErrUnimplemented, "rename from archive %s to archive %s", srcHandle, dstHandle)
	}

	if !op(srcArchive, src, dst) {
		return result.ErrNothingHappened
	}

	m.logger.Info("Renamed successfully",
		logfield.Handle(uint64(srcHandle)),
		zap.String("from", logfield.SanitizePath(src.String())),
		zap.String("to", logfield.SanitizePath(dst.String())))

	return nil
}

// sameBackend reports whether a and b are the same backend instance
func sameBackend(a, b backends.ArchiveBackend) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta.Comparable() && a == b
}

// OpenFileFromArchive opens the file at path and wraps it in a File resource.
func (m *Manager) OpenFileFromArchive(h Handle, path backends.Path, mode backends.Mode) (*File, error) {
	backend, err := m.resolve(h)
	if err != nil {
		return nil, m.observe("open_file", err)
	}

	fileBackend, err := backend.OpenFile(path, mode)
	if err != nil {
		m.logger.Debug("Failed to open file",
			logfield.Handle(uint64(h)),
			logfield.Path(path),
			zap.String("mode", fmt.Sprintf("0x%X", mode.Raw())),
			zap.Error(err))
		return nil, m.observe("open_file", result.Wrap(result.ErrFileNotFound, err))
	}

	return NewFile(fileBackend, path, m.logger), m.observe("open_file", nil)
}

// OpenDirectoryFromArchive opens the directory at path and wraps it in a
// Directory resource.
func (m *Manager) OpenDirectoryFromArchive(h Handle, path backends.Path) (*Directory, error) {
	backend, err := m.resolve(h)
	if err != nil {
		return nil, m.observe("open_directory", err)
	}

	dirBackend, err := backend.OpenDirectory(path)
	if err != nil {
		m.logger.Debug("Failed to open directory",
			logfield.Handle(uint64(h)),
			logfield.Path(path),
			zap.Error(err))
		return nil, m.observe("open_directory", result.Wrap(result.ErrArchiveNotFound, err))
	}

	return NewDirectory(dirBackend, path, m.logger), m.observe("open_directory", nil)
}
