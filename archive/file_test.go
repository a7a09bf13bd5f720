package archive

import (
	"errors"
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

const memBase = 0x10000000

type fakeSessions struct {
	created []ipc.Handler
	err     error
}

func (s *fakeSessions) Create(h ipc.Handler) (uint32, error) {
	if s.err != nil {
		return ipc.InvalidHandle, s.err
	}
	s.created = append(s.created, h)
	return uint32(len(s.created)) + 0x100, nil
}

// openTestFile creates /data.bin holding content and opens it read-write
func openTestFile(t *testing.T, content string) *File {
	t.Helper()
	logger := zaptest.NewLogger(t)
	a := hostdir.NewArchive("test", memfs.New(), logger)

	fb, err := a.OpenFile(backends.StringPath("/data.bin"), backends.Mode{Read: true, Write: true, Create: true})
	require.NoError(t, err)
	if content != "" {
		_, err = fb.Write(0, []byte(content), false)
		require.NoError(t, err)
	}
	return NewFile(fb, backends.StringPath("/data.bin"), logger)
}

func request(mem ipc.Memory, sessions ipc.SessionTable, words ...uint32) *ipc.Request {
	var buf ipc.CommandBuffer
	copy(buf[:], words)
	return &ipc.Request{Buffer: &buf, Memory: mem, Sessions: sessions}
}

func TestFileRead(t *testing.T) {
	f := openTestFile(t, "hello world")
	mem := ipc.NewFlatMemory(memBase, 0x100)

	req := request(mem, nil, uint32(FileRead), 6, 0, 5, 0, memBase)
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(5), req.Buffer[2])
	assert.Equal(t, "world", string(mem.Data[:5]))
}

func TestFileShortReadIsSuccess(t *testing.T) {
	f := openTestFile(t, "hello world")
	mem := ipc.NewFlatMemory(memBase, 0x100)

	req := request(mem, nil, uint32(FileRead), 0, 0, 0x40, 0, memBase)
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(11), req.Buffer[2], "fewer bytes than requested")
	assert.Equal(t, "hello world", string(mem.Data[:11]))
}

func TestFileReadBadBuffer(t *testing.T) {
	f := openTestFile(t, "hello")
	mem := ipc.NewFlatMemory(memBase, 0x10)

	req := request(mem, nil, uint32(FileRead), 0, 0, 0x20, 0, memBase)
	err := f.HandleSyncRequest(req)
	assert.Equal(t, result.ErrInvalidBuffer, result.FromError(err))
}

func TestFileWriteAndSize(t *testing.T) {
	f := openTestFile(t, "")
	mem := ipc.NewFlatMemory(memBase, 0x100)
	copy(mem.Data, "payload")

	req := request(mem, nil, uint32(FileWrite), 4, 0, 7, 1, 0, memBase)
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(7), req.Buffer[2])

	req = request(mem, nil, uint32(FileGetSize))
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint64(11), req.Buffer.U64(2))

	req = request(mem, nil, uint32(FileSetSize), 0x20, 0)
	require.NoError(t, f.HandleSyncRequest(req))

	req = request(mem, nil, uint32(FileGetSize))
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(0x20), req.Buffer[2])
	assert.Equal(t, uint32(0), req.Buffer[3])

	require.NoError(t, f.HandleSyncRequest(request(mem, nil, uint32(FileFlush))))
}

func TestFileHugeOffsets(t *testing.T) {
	f := openTestFile(t, "hello")
	mem := ipc.NewFlatMemory(memBase, 0x100)

	req := request(mem, nil, uint32(FileRead), 0, 0x80000000, 5, 0, memBase)
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(0), req.Buffer[2])

	req = request(mem, nil, uint32(FileSetSize), 0, 0x80000000)
	var err error
	require.NotPanics(t, func() { err = f.HandleSyncRequest(req) })
	assert.Equal(t, result.ErrUnclassified, result.FromError(err))

	req = request(mem, nil, uint32(FileGetSize))
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint64(5), req.Buffer.U64(2))
}

func TestFilePriority(t *testing.T) {
	f := openTestFile(t, "")

	for _, p := range []uint32{0, 1, 0xFFFFFFFF, 42} {
		require.NoError(t, f.HandleSyncRequest(request(nil, nil, uint32(FileSetPriority), p)))

		req := request(nil, nil, uint32(FileGetPriority))
		require.NoError(t, f.HandleSyncRequest(req))
		assert.Equal(t, p, req.Buffer[2])
	}
}

func TestFileUnknownCommandKeepsState(t *testing.T) {
	f := openTestFile(t, "abc")
	require.NoError(t, f.HandleSyncRequest(request(nil, nil, uint32(FileSetPriority), 9)))

	req := request(nil, nil, 0x08FF0040, 123)
	err := f.HandleSyncRequest(req)
	assert.Equal(t, result.ErrUnimplemented, result.FromError(err))
	assert.Equal(t, uint32(9), f.Priority())
	assert.False(t, f.Closed())
}

func TestFileUnimplementedKnownCommands(t *testing.T) {
	f := openTestFile(t, "")

	for _, cmd := range []ipc.Command{CommandDummy1, CommandControl, FileOpenSubFile} {
		t.Run(FileCommands.Name(cmd), func(t *testing.T) {
			err := f.HandleSyncRequest(request(nil, nil, uint32(cmd)))
			assert.Equal(t, result.ErrUnimplemented, result.FromError(err))
		})
	}
}

func TestFileAttributeStubs(t *testing.T) {
	f := openTestFile(t, "")

	req := request(nil, nil, uint32(FileGetAttributes))
	req.Buffer[2] = 0xDEAD
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(0), req.Buffer[2])

	require.NoError(t, f.HandleSyncRequest(request(nil, nil, uint32(FileSetAttributes), 1)))
}

func TestFileOpenLinkFile(t *testing.T) {
	f := openTestFile(t, "")
	sessions := &fakeSessions{}

	req := request(nil, sessions, uint32(FileOpenLinkFile))
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, uint32(0x101), req.Buffer[3])
	require.Len(t, sessions.created, 1)
	assert.Same(t, f, sessions.created[0], "the link aliases the same resource")

	failing := &fakeSessions{err: errors.New("table full")}
	req = request(nil, failing, uint32(FileOpenLinkFile))
	require.NoError(t, f.HandleSyncRequest(req))
	assert.Equal(t, ipc.InvalidHandle, req.Buffer[3])
}

func TestFileClose(t *testing.T) {
	f := openTestFile(t, "abc")
	mem := ipc.NewFlatMemory(memBase, 0x100)

	require.NoError(t, f.HandleSyncRequest(request(mem, nil, uint32(FileClose))))
	assert.True(t, f.Closed())

	for _, words := range [][]uint32{
		{uint32(FileRead), 0, 0, 3, 0, memBase},
		{uint32(FileGetSize)},
		{uint32(FileSetPriority), 1},
		{uint32(FileClose)},
	} {
		err := f.HandleSyncRequest(request(mem, nil, words...))
		assert.Equal(t, result.ErrInvalidHandle, result.FromError(err), FileCommands.Name(ipc.Command(words[0])))
	}

	err := f.HandleSyncRequest(request(mem, nil, 0x08FF0000))
	assert.Equal(t, result.ErrUnimplemented, result.FromError(err), "unknown commands stay unimplemented")
}
