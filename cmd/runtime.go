package main

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/archive"
	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
	"github.com/ebogdum/archivefs/backends/noop"
	"github.com/ebogdum/archivefs/config"
	"github.com/ebogdum/archivefs/service"
)

// runtime is everything one CLI invocation needs to talk to the archives
type runtime struct {
	cfg        config.AppConfig
	logger     *zap.Logger
	manager    *archive.Manager
	sessions   *service.Sessions
	dispatcher *service.Dispatcher
}

// newRuntime loads configuration, builds the logger and registers every enabled
// archive type.
func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, root := range []string{cfg.Storage.SDMCRoot, cfg.Storage.NANDRoot} {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
		}
	}

	sdmc := osfs.New(cfg.Storage.SDMCRoot)
	nand := osfs.New(cfg.Storage.NANDRoot)
	layout := hostdir.Layout{}

	manager := archive.NewManager(archive.Storage{NAND: nand, SDMC: sdmc, Layout: layout}, logger)
	if err := registerArchives(manager, cfg, sdmc, nand, layout, logger); err != nil {
		return nil, err
	}

	sessions := service.NewSessions(logger)

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		manager:    manager,
		sessions:   sessions,
		dispatcher: service.NewDispatcher(sessions, logger),
	}, nil
}

// registerArchives registers a factory for every archive type named in the configuration
func registerArchives(m *archive.Manager, cfg config.AppConfig, sdmc, nand billy.Filesystem, layout hostdir.Layout, logger *zap.Logger) error {
	for _, name := range cfg.Archives.Enabled {
		id, err := archive.ParseIDCode(name)
		if err != nil {
			return err
		}

		var factory backends.ArchiveFactory
		switch id {
		case archive.SDMC:
			factory = hostdir.NewSDMCFactory(sdmc, logger)
		case archive.SDMCWriteOnly:
			factory = hostdir.NewSDMCWriteOnlyFactory(sdmc, logger)
		case archive.SaveData:
			factory = hostdir.NewSaveDataFactory(sdmc, layout, cfg.Title.ProgramID, logger)
		case archive.ExtSaveData:
			factory = hostdir.NewExtSaveDataFactory(sdmc, layout, false, logger)
		case archive.SharedExtSaveData:
			factory = hostdir.NewExtSaveDataFactory(nand, layout, true, logger)
		case archive.SystemSaveData:
			factory = hostdir.NewSystemSaveDataFactory(nand, layout, logger)
		default:
			factory = noop.NewFactory(name)
		}

		m.RegisterArchiveType(factory, id)
	}

	logger.Debug("Archive types registered", zap.Int("count", len(cfg.Archives.Enabled)))
	return nil
}

// closeInto runs closeFn and stores its error in *err unless *err already holds one.
// Deferred by commands that return a named error.
func closeInto(err *error, closeFn func() error) {
	if closeErr := closeFn(); closeErr != nil && *err == nil {
		*err = closeErr
	}
}

// close shuts the manager down and flushes the logger
func (rt *runtime) close() error {
	if n := rt.sessions.Len(); n > 0 {
		rt.logger.Warn("Sessions still registered at shutdown", zap.Int("sessions", n))
	}
	err := rt.manager.Shutdown()
	syncLogger(rt.logger)
	return err
}
