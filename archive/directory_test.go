package archive

import (
	"encoding/binary"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/result"
)

func openTestDirectory(t *testing.T, files ...string) *Directory {
	t.Helper()
	logger := zaptest.NewLogger(t)
	a := hostdir.NewArchive("test", memfs.New(), logger)

	require.True(t, a.CreateDirectory(backends.StringPath("/dir")))
	for i, name := range files {
		require.NoError(t, a.CreateFile(backends.StringPath("/dir/"+name), uint32(i+1)))
	}

	db, err := a.OpenDirectory(backends.StringPath("/dir"))
	require.NoError(t, err)
	return NewDirectory(db, backends.StringPath("/dir"), logger)
}

func TestDirectoryRead(t *testing.T) {
	d := openTestDirectory(t, "a.bin", "b.bin", "c.bin")
	mem := ipc.NewFlatMemory(memBase, 4*backends.EntrySize)

	req := request(mem, nil, uint32(DirectoryRead), 2, 0, memBase)
	require.NoError(t, d.HandleSyncRequest(req))
	assert.Equal(t, uint32(2), req.Buffer[2])

	// First entry name is UTF-16LE
	assert.Equal(t, []byte{'a', 0, '.', 0, 'b', 0}, mem.Data[:6])
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(mem.Data[0x220:]))
	assert.Equal(t, byte('b'), mem.Data[backends.EntrySize])

	// End of listing yields a short count
	req = request(mem, nil, uint32(DirectoryRead), 4, 0, memBase)
	require.NoError(t, d.HandleSyncRequest(req))
	assert.Equal(t, uint32(1), req.Buffer[2])
	assert.Equal(t, byte('c'), mem.Data[0])

	req = request(mem, nil, uint32(DirectoryRead), 4, 0, memBase)
	require.NoError(t, d.HandleSyncRequest(req))
	assert.Equal(t, uint32(0), req.Buffer[2])
}

func TestDirectoryReadBadBuffer(t *testing.T) {
	d := openTestDirectory(t, "a.bin")
	mem := ipc.NewFlatMemory(memBase, backends.EntrySize)

	err := d.HandleSyncRequest(request(mem, nil, uint32(DirectoryRead), 2, 0, memBase))
	assert.Equal(t, result.ErrInvalidBuffer, result.FromError(err))

	err = d.HandleSyncRequest(request(mem, nil, uint32(DirectoryRead), 0xFFFFFFFF, 0, memBase))
	assert.Equal(t, result.ErrInvalidBuffer, result.FromError(err))
}

func TestDirectoryUnknownCommand(t *testing.T) {
	d := openTestDirectory(t)

	err := d.HandleSyncRequest(request(nil, nil, uint32(FileGetSize)))
	assert.Equal(t, result.ErrUnimplemented, result.FromError(err))
	assert.False(t, d.Closed())

	err = d.HandleSyncRequest(request(nil, nil, uint32(CommandControl)))
	assert.Equal(t, result.ErrUnimplemented, result.FromError(err))
}

func TestDirectoryClose(t *testing.T) {
	d := openTestDirectory(t, "a.bin")
	mem := ipc.NewFlatMemory(memBase, backends.EntrySize)

	require.NoError(t, d.HandleSyncRequest(request(mem, nil, uint32(DirectoryClose))))
	assert.True(t, d.Closed())

	err := d.HandleSyncRequest(request(mem, nil, uint32(DirectoryRead), 1, 0, memBase))
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(err))
	err = d.HandleSyncRequest(request(mem, nil, uint32(DirectoryClose)))
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(err))
}
