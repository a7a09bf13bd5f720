package hostdir

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/result"
)

// Factory opens archives whose contents live in a container directory of a host
// filesystem. The container is chosen from the archive path.
type Factory struct {
	name string
	fs   billy.Filesystem

	// container maps the archive path to a directory of fs
	container func(backends.Path) (string, error)

	// missing is returned when the container does not exist and is not created on open
	missing      result.Code
	createOnOpen bool
	formattable  bool
	writeOnly    bool

	logger *zap.Logger
}

// NewSDMCFactory serves the whole SDMC root as one archive.
func NewSDMCFactory(fs billy.Filesystem, logger *zap.Logger) *Factory {
	return &Factory{
		name:         "SDMC",
		fs:           fs,
		container:    func(backends.Path) (string, error) { return "/", nil },
		createOnOpen: true,
		logger:       logger,
	}
}

// NewSDMCWriteOnlyFactory serves the SDMC root like NewSDMCFactory but refuses
// to open files for reading or to list directories.
func NewSDMCWriteOnlyFactory(fs billy.Filesystem, logger *zap.Logger) *Factory {
	f := NewSDMCFactory(fs, logger)
	f.name = "SDMCWriteOnly"
	f.writeOnly = true
	return f
}

// NewSaveDataFactory serves the save data of the running program. The archive must
// be formatted before it can be opened.
func NewSaveDataFactory(fs billy.Filesystem, layout Layout, programID uint64, logger *zap.Logger) *Factory {
	dir := layout.SaveDataDir(programID)
	return &Factory{
		name:        "SaveData",
		fs:          fs,
		container:   func(backends.Path) (string, error) { return dir, nil },
		missing:     result.ErrNotFormatted,
		formattable: true,
		logger:      logger,
	}
}

// NewExtSaveDataFactory serves extra data addressed by a 12-byte binary path. Shared
// extra data lives on NAND, the rest on SDMC.
func NewExtSaveDataFactory(fs billy.Filesystem, layout Layout, shared bool, logger *zap.Logger) *Factory {
	media, name := backends.MediaSDMC, "ExtSaveData"
	if shared {
		media, name = backends.MediaNAND, "SharedExtSaveData"
	}
	return &Factory{
		name: name,
		fs:   fs,
		container: func(p backends.Path) (string, error) {
			high, low, err := parseExtSaveDataPath(p)
			if err != nil {
				return "", err
			}
			return layout.ExtSaveDataDir(media, high, low)
		},
		missing:     result.ErrFileNotFound,
		formattable: true,
		logger:      logger,
	}
}

// NewSystemSaveDataFactory serves system saves addressed by an 8-byte binary path.
// Containers are created on first open.
func NewSystemSaveDataFactory(fs billy.Filesystem, layout Layout, logger *zap.Logger) *Factory {
	return &Factory{
		name: "SystemSaveData",
		fs:   fs,
		container: func(p backends.Path) (string, error) {
			high, low, err := parseSystemSaveDataPath(p)
			if err != nil {
				return "", err
			}
			return layout.SystemSaveDataDir(high, low), nil
		},
		createOnOpen: true,
		formattable:  true,
		logger:       logger,
	}
}

// Name returns the archive type name
func (f *Factory) Name() string {
	return f.name
}

// Open returns a backend confined to the container selected by path
func (f *Factory) Open(path backends.Path) (backends.ArchiveBackend, error) {
	dir, err := f.container(path)
	if err != nil {
		return nil, err
	}

	info, err := f.fs.Stat(dir)
	switch {
	case err == nil && info.IsDir():
	case err == nil:
		return nil, result.Wrapf(f.missingCode(), "container %s is not a directory", dir)
	case f.createOnOpen:
		if err := f.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create container %s: %w", dir, err)
		}
	default:
		return nil, result.Wrapf(f.missingCode(), "container %s does not exist", dir)
	}

	root := f.fs
	if dir != "/" {
		root, err = f.fs.Chroot(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to enter container %s: %w", dir, err)
		}
	}

	f.logger.Info("Archive opened",
		zap.String("archive", f.name),
		zap.String("container", dir))

	archive := NewArchive(f.name, root, f.logger)
	archive.writeOnly = f.writeOnly
	return archive, nil
}

// Format wipes the container selected by path and recreates it empty
func (f *Factory) Format(path backends.Path) error {
	if !f.formattable {
		return result.Wrapf(result.ErrUnimplemented, "%s archives cannot be formatted", f.name)
	}

	dir, err := f.container(path)
	if err != nil {
		return err
	}

	if err := util.RemoveAll(f.fs, dir); err != nil {
		return fmt.Errorf("failed to clear container %s: %w", dir, err)
	}
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create container %s: %w", dir, err)
	}

	f.logger.Info("Archive formatted",
		zap.String("archive", f.name),
		zap.String("container", dir))

	return nil
}

func (f *Factory) missingCode() result.Code {
	if f.missing == 0 {
		return result.ErrFileNotFound
	}
	return f.missing
}
