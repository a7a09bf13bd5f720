package main

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ebogdum/archivefs/archive"
	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
	"github.com/ebogdum/archivefs/config"
	"github.com/ebogdum/archivefs/result"
	"github.com/ebogdum/archivefs/service"
)

func newTestRuntime(t *testing.T, enabled ...string) *runtime {
	t.Helper()
	logger := zaptest.NewLogger(t)
	sdmc, nand := memfs.New(), memfs.New()
	layout := hostdir.Layout{}

	cfg := config.DefaultAppConfig()
	cfg.Archives.Enabled = enabled

	manager := archive.NewManager(archive.Storage{NAND: nand, SDMC: sdmc, Layout: layout}, logger)
	require.NoError(t, registerArchives(manager, cfg, sdmc, nand, layout, logger))

	sessions := service.NewSessions(logger)
	return &runtime{
		cfg:        cfg,
		logger:     logger,
		manager:    manager,
		sessions:   sessions,
		dispatcher: service.NewDispatcher(sessions, logger),
	}
}

func TestCloseInto(t *testing.T) {
	first := errors.New("command failed")
	shutdown := errors.New("shutdown failed")

	tests := []struct {
		name     string
		err      error
		closeErr error
		expected error
	}{
		{name: "both succeed", err: nil, closeErr: nil, expected: nil},
		{name: "shutdown error surfaces", err: nil, closeErr: shutdown, expected: shutdown},
		{name: "command error wins", err: first, closeErr: shutdown, expected: first},
		{name: "command error kept", err: first, closeErr: nil, expected: first},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.err
			called := false
			closeInto(&err, func() error { called = true; return tt.closeErr })
			assert.True(t, called)
			assert.Equal(t, tt.expected, err)
		})
	}
}

func TestRegisterArchivesWriteOnlySDMC(t *testing.T) {
	rt := newTestRuntime(t, "SDMC", "SDMCWriteOnly")

	h, err := rt.manager.OpenArchive(archive.SDMC, backends.EmptyPath())
	require.NoError(t, err)
	require.NoError(t, rt.manager.CreateFileInArchive(h, backends.StringPath("/photo.jpg"), 16))

	wo, err := rt.manager.OpenArchive(archive.SDMCWriteOnly, backends.EmptyPath())
	require.NoError(t, err)
	assert.Equal(t, "SDMCWriteOnly", rt.manager.Archive(wo).Name())

	_, err = rt.manager.OpenFileFromArchive(wo, backends.StringPath("/photo.jpg"), backends.Mode{Read: true})
	assert.True(t, errors.Is(err, result.ErrInvalidOpenFlags))

	f, err := rt.manager.OpenFileFromArchive(wo, backends.StringPath("/photo.jpg"), backends.Mode{Write: true})
	require.NoError(t, err)
	closeResource(rt, openSession(rt, f), f, archive.FileClose)

	require.NoError(t, rt.close())
}

func TestCloseResourceReleasesSession(t *testing.T) {
	rt := newTestRuntime(t, "SDMC")

	h, err := rt.manager.OpenArchive(archive.SDMC, backends.EmptyPath())
	require.NoError(t, err)
	require.NoError(t, rt.manager.CreateFileInArchive(h, backends.StringPath("/a.bin"), 0))

	f, err := rt.manager.OpenFileFromArchive(h, backends.StringPath("/a.bin"), backends.Mode{Read: true})
	require.NoError(t, err)
	d, err := rt.manager.OpenDirectoryFromArchive(h, backends.StringPath("/"))
	require.NoError(t, err)

	fileSession := openSession(rt, f)
	dirSession := openSession(rt, d)
	assert.NotEqual(t, fileSession, dirSession)
	assert.Equal(t, 2, rt.sessions.Len())

	closeResource(rt, fileSession, f, archive.FileClose)
	assert.True(t, f.Closed())
	assert.Equal(t, 1, rt.sessions.Len())

	closeResource(rt, dirSession, d, archive.DirectoryClose)
	assert.True(t, d.Closed())
	assert.Equal(t, 0, rt.sessions.Len())

	require.NoError(t, rt.close())
}

func TestFilePathWide(t *testing.T) {
	defer func() { widePaths = false }()

	p, err := filePath("/save.bin")
	require.NoError(t, err)
	assert.Equal(t, backends.StringPath("/save.bin"), p)

	widePaths = true
	p, err = filePath("/save.bin")
	require.NoError(t, err)
	assert.Equal(t, backends.PathWchar, p.Type)
	s, err := p.AsString()
	require.NoError(t, err)
	assert.Equal(t, "/save.bin", s)
}
