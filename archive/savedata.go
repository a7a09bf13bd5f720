package archive

import (
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/metrics"
	"github.com/ebogdum/archivefs/result"
)

// ContainerLayout derives the directories that hold save-data containers.
type ContainerLayout interface {
	ExtSaveDataDir(media backends.MediaType, high, low uint32) (string, error)
	SystemSaveDataDir(high, low uint32) string
}

// Storage is the host storage that save-data containers are provisioned on.
type Storage struct {
	NAND   billy.Filesystem
	SDMC   billy.Filesystem
	Layout ContainerLayout
}

func (s Storage) filesystem(media backends.MediaType) (billy.Filesystem, error) {
	var fs billy.Filesystem
	switch media {
	case backends.MediaNAND:
		fs = s.NAND
	case backends.MediaSDMC:
		fs = s.SDMC
	default:
		return nil, result.Wrapf(result.ErrUnsupportedMedia, "unsupported media type %s", media)
	}
	if fs == nil || s.Layout == nil {
		return nil, result.Wrapf(result.ErrUnsupportedMedia, "no %s storage configured", media)
	}
	return fs, nil
}

// CreateExtSaveData creates the extra-data container for (high, low) on media.
// No archive needs to be open.
func (m *Manager) CreateExtSaveData(media backends.MediaType, high, low uint32) error {
	fs, err := m.storage.filesystem(media)
	if err != nil {
		return m.provisioned("extsavedata", "create", err)
	}
	dir, err := m.storage.Layout.ExtSaveDataDir(media, high, low)
	if err != nil {
		return m.provisioned("extsavedata", "create", err)
	}
	return m.provisioned("extsavedata", "create", m.createContainer(fs, dir))
}

// DeleteExtSaveData removes the extra-data container for (high, low) on media and
// everything in it.
func (m *Manager) DeleteExtSaveData(media backends.MediaType, high, low uint32) error {
	fs, err := m.storage.filesystem(media)
	if err != nil {
		return m.provisioned("extsavedata", "delete", err)
	}
	dir, err := m.storage.Layout.ExtSaveDataDir(media, high, low)
	if err != nil {
		return m.provisioned("extsavedata", "delete", err)
	}
	return m.provisioned("extsavedata", "delete", m.deleteContainer(fs, dir))
}

// CreateSystemSaveData creates the system save container for (high, low) on NAND.
func (m *Manager) CreateSystemSaveData(high, low uint32) error {
	fs, err := m.storage.filesystem(backends.MediaNAND)
	if err != nil {
		return m.provisioned("systemsavedata", "create", err)
	}
	dir := m.storage.Layout.SystemSaveDataDir(high, low)
	return m.provisioned("systemsavedata", "create", m.createContainer(fs, dir))
}

// DeleteSystemSaveData removes the system save container for (high, low) on NAND.
func (m *Manager) DeleteSystemSaveData(high, low uint32) error {
	fs, err := m.storage.filesystem(backends.MediaNAND)
	if err != nil {
		return m.provisioned("systemsavedata", "delete", err)
	}
	dir := m.storage.Layout.SystemSaveDataDir(high, low)
	return m.provisioned("systemsavedata", "delete", m.deleteContainer(fs, dir))
}

func (m *Manager) createContainer(fs billy.Filesystem, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return result.Wrap(result.ErrUnclassified, err)
	}
	m.logger.Info("Save data container created", zap.String("container", dir))
	return nil
}

func (m *Manager) deleteContainer(fs billy.Filesystem, dir string) error {
	if _, err := fs.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return result.Wrap(result.ErrFileNotFound, err)
		}
		return result.Wrap(result.ErrUnclassified, err)
	}
	if err := util.RemoveAll(fs, dir); err != nil {
		return result.Wrap(result.ErrUnclassified, err)
	}
	m.logger.Info("Save data container deleted", zap.String("container", dir))
	return nil
}

func (m *Manager) provisioned(kind, operation string, err error) error {
	if err != nil {
		m.logger.Warn("Save data provisioning failed",
			zap.String("kind", kind),
			zap.String("operation", operation),
			zap.Error(err))
	}
	metrics.ProvisionOpsTotal.WithLabelValues(kind, operation, metrics.Status(result.FromError(err).Raw())).Inc()
	return err
}
