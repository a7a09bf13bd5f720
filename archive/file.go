package archive

import (
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/result"
)

// File is an open file exposed as a command handling resource. After Close the
// resource stays valid but rejects every command.
type File struct {
	path     backends.Path
	priority uint32
	backend  backends.FileBackend
	closed   bool
	logger   *zap.Logger
}

// NewFile wraps an open file backend.
func NewFile(backend backends.FileBackend, path backends.Path, logger *zap.Logger) *File {
	return &File{
		path:    path,
		backend: backend,
		logger:  logger,
	}
}

// TypeName implements ipc.Handler
func (f *File) TypeName() string { return "file" }

// Commands implements ipc.Handler
func (f *File) Commands() ipc.CommandTable { return FileCommands }

// Path returns the path the file was opened with
func (f *File) Path() backends.Path { return f.path }

// Priority returns the priority last set by the guest
func (f *File) Priority() uint32 { return f.priority }

// Closed reports whether Close has run
func (f *File) Closed() bool { return f.closed }

// HandleSyncRequest implements ipc.Handler.
func (f *File) HandleSyncRequest(req *ipc.Request) error {
	cmd := req.Command()
	buf := req.Buffer

	if !FileCommands.Known(cmd) {
		f.logger.Error("Unknown file command",
			zap.Stringer("command", cmd),
			logfield.Path(f.path))
		return result.ErrUnimplemented
	}

	f.logger.Debug("File command",
		zap.String("command", FileCommands.Name(cmd)),
		logfield.Path(f.path))

	if f.closed {
		f.logger.Warn("Command on closed file",
			zap.String("command", FileCommands.Name(cmd)),
			logfield.Path(f.path))
		return result.ErrInvalidHandle
	}

	switch cmd {
	case FileRead:
		offset, length, addr := buf.U64(1), buf[3], buf[5]
		dst, err := req.Memory.Slice(addr, length)
		if err != nil {
			return result.Wrap(result.ErrInvalidBuffer, err)
		}
		n, err := f.backend.Read(offset, dst)
		if err != nil {
			return err
		}
		buf[2] = uint32(n)

	case FileWrite:
		offset, length, flush, addr := buf.U64(1), buf[3], buf[4] != 0, buf[6]
		src, err := req.Memory.Slice(addr, length)
		if err != nil {
			return result.Wrap(result.ErrInvalidBuffer, err)
		}
		n, err := f.backend.Write(offset, src, flush)
		if err != nil {
			return err
		}
		buf[2] = uint32(n)

	case FileGetSize:
		buf.SetU64(2, f.backend.Size())

	case FileSetSize:
		size := buf.U64(1)
		if !f.backend.SetSize(size) {
			return result.Wrapf(result.ErrUnclassified, "backend refused size %d", size)
		}

	case FileGetAttributes:
		f.logger.Warn("GetAttributes is not implemented, reporting no attributes", logfield.Path(f.path))
		buf[2] = 0

	case FileSetAttributes:
		f.logger.Warn("SetAttributes is not implemented, ignoring",
			logfield.Path(f.path),
			zap.Uint32("attributes", buf[1]))

	case FileClose:
		f.backend.Close()
		f.closed = true
		f.logger.Debug("File closed", logfield.Path(f.path))

	case FileFlush:
		f.backend.Flush()

	case FileSetPriority:
		f.priority = buf[1]

	case FileGetPriority:
		buf[2] = f.priority

	case FileOpenLinkFile:
		// The link shares this resource instead of opening a new one.
		buf[3] = ipc.InvalidHandle
		if req.Sessions == nil {
			f.logger.Warn("OpenLinkFile without a session table", logfield.Path(f.path))
			break
		}
		h, err := req.Sessions.Create(f)
		if err != nil {
			f.logger.Warn("Failed to register linked file", logfield.Path(f.path), zap.Error(err))
			break
		}
		buf[3] = h

	default:
		f.logger.Error("Unimplemented file command",
			zap.String("command", FileCommands.Name(cmd)),
			logfield.Path(f.path))
		return result.ErrUnimplemented
	}

	return nil
}
