package archive

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/metrics"
	"github.com/ebogdum/archivefs/result"
)

// Manager owns the archive type registry and the table of open archive instances.
// It is not safe for concurrent use; callers serialize access.
type Manager struct {
	factories  map[IDCode]backends.ArchiveFactory
	archives   map[Handle]backends.ArchiveBackend
	nextHandle Handle

	storage Storage
	logger  *zap.Logger
}

// NewManager creates an empty manager. storage backs the save-data provisioning
// operations and may be left zero when they are not used.
func NewManager(storage Storage, logger *zap.Logger) *Manager {
	return &Manager{
		factories:  make(map[IDCode]backends.ArchiveFactory),
		archives:   make(map[Handle]backends.ArchiveBackend),
		nextHandle: 1,
		storage:    storage,
		logger:     logger,
	}
}

// RegisterArchiveType registers factory under id. Registering an id twice is a
// programming error and panics.
func (m *Manager) RegisterArchiveType(factory backends.ArchiveFactory, id IDCode) {
	if existing, ok := m.factories[id]; ok {
		m.logger.Error("Archive type registered twice",
			zap.Stringer("id_code", id),
			zap.String("existing", existing.Name()),
			zap.String("factory", factory.Name()))
		panic(fmt.Sprintf("archive: tried to register more than one archive with id code %s", id))
	}

	m.factories[id] = factory
	metrics.RegisteredArchiveTypes.Set(float64(len(m.factories)))

	m.logger.Debug("Registered archive type",
		zap.Stringer("id_code", id),
		zap.String("factory", factory.Name()))
}

// Factory returns the factory registered under id.
func (m *Manager) Factory(id IDCode) (backends.ArchiveFactory, error) {
	factory, ok := m.factories[id]
	if !ok {
		return nil, result.Wrapf(result.ErrArchiveNotFound, "archive type %s is not registered", id)
	}
	return factory, nil
}

// FormatArchive erases the archive of type id addressed by path.
func (m *Manager) FormatArchive(id IDCode, path backends.Path) error {
	factory, err := m.Factory(id)
	if err != nil {
		return m.observe("format", err)
	}

	if err := factory.Format(path); err != nil {
		m.logger.Warn("Failed to format archive",
			zap.Stringer("id_code", id),
			logfield.Path(path),
			zap.Error(err))
		return m.observe("format", err)
	}

	m.logger.Info("Archive formatted",
		zap.Stringer("id_code", id),
		logfield.Path(path))

	return m.observe("format", nil)
}

// OpenArchive opens an instance of the archive type id and returns its handle.
// Failures reported by the factory are returned unchanged.
func (m *Manager) OpenArchive(id IDCode, path backends.Path) (Handle, error) {
	factory, err := m.Factory(id)
	if err != nil {
		return InvalidHandle, m.observe("open", err)
	}

	backend, err := factory.Open(path)
	if err != nil {
		m.logger.Debug("Factory failed to open archive",
			zap.Stringer("id_code", id),
			logfield.Path(path),
			zap.Error(err))
		return InvalidHandle, m.observe("open", err)
	}

	h := m.allocateHandle()
	m.archives[h] = backend
	metrics.OpenArchives.Set(float64(len(m.archives)))

	m.logger.Info("Archive opened",
		zap.Stringer("id_code", id),
		zap.String("archive", backend.Name()),
		logfield.Handle(uint64(h)))

	return h, m.observe("open", nil)
}

// allocateHandle returns the next counter value not held by an open archive
func (m *Manager) allocateHandle() Handle {
	for {
		h := m.nextHandle
		m.nextHandle++
		if h == InvalidHandle {
			continue
		}
		if _, taken := m.archives[h]; !taken {
			return h
		}
	}
}

// CloseArchive closes the archive behind h and releases the handle.
func (m *Manager) CloseArchive(h Handle) error {
	backend, ok := m.archives[h]
	if !ok {
		return m.observe("close", result.ErrInvalidHandle)
	}

	delete(m.archives, h)
	metrics.OpenArchives.Set(float64(len(m.archives)))

	if err := backend.Close(); err != nil {
		// The handle is released regardless.
		m.logger.Warn("Archive backend failed to close cleanly",
			logfield.Handle(uint64(h)),
			zap.Error(err))
	}

	m.logger.Info("Archive closed", logfield.Handle(uint64(h)))

	return m.observe("close", nil)
}

// Archive returns the backend behind h, or nil if h is not open. The manager keeps
// ownership of the backend.
func (m *Manager) Archive(h Handle) backends.ArchiveBackend {
	return m.archives[h]
}

// OpenArchives returns the number of open archive instances.
func (m *Manager) OpenArchives() int {
	return len(m.archives)
}

// Shutdown closes every open archive and clears both the instance table and the
// type registry. The manager may be reused afterwards.
func (m *Manager) Shutdown() error {
	var err error
	for h, backend := range m.archives {
		if closeErr := backend.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close archive %s: %w", h, closeErr))
		}
	}

	closed := len(m.archives)
	m.archives = make(map[Handle]backends.ArchiveBackend)
	m.factories = make(map[IDCode]backends.ArchiveFactory)
	m.nextHandle = 1

	metrics.OpenArchives.Set(0)
	metrics.RegisteredArchiveTypes.Set(0)

	m.logger.Info("Archive manager shut down", zap.Int("closed_archives", closed))

	return err
}

// observe counts an archive operation by its outcome and passes err through
func (m *Manager) observe(operation string, err error) error {
	metrics.ArchiveOpsTotal.WithLabelValues(operation, metrics.Status(result.FromError(err).Raw())).Inc()
	return err
}
