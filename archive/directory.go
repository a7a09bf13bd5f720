package archive

import (
	"math"

	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/result"
)

// Directory is an open directory exposed as a command handling resource.
type Directory struct {
	path    backends.Path
	backend backends.DirectoryBackend
	closed  bool
	logger  *zap.Logger
}

// NewDirectory wraps an open directory backend.
func NewDirectory(backend backends.DirectoryBackend, path backends.Path, logger *zap.Logger) *Directory {
	return &Directory{
		path:    path,
		backend: backend,
		logger:  logger,
	}
}

// TypeName implements ipc.Handler
func (d *Directory) TypeName() string { return "directory" }

// Commands implements ipc.Handler
func (d *Directory) Commands() ipc.CommandTable { return DirectoryCommands }

// Path returns the path the directory was opened with
func (d *Directory) Path() backends.Path { return d.path }

// Closed reports whether Close has run
func (d *Directory) Closed() bool { return d.closed }

// HandleSyncRequest implements ipc.Handler.
func (d *Directory) HandleSyncRequest(req *ipc.Request) error {
	cmd := req.Command()
	buf := req.Buffer

	if !DirectoryCommands.Known(cmd) {
		d.logger.Error("Unknown directory command",
			zap.Stringer("command", cmd),
			logfield.Path(d.path))
		return result.ErrUnimplemented
	}

	d.logger.Debug("Directory command",
		zap.String("command", DirectoryCommands.Name(cmd)),
		logfield.Path(d.path))

	if d.closed {
		d.logger.Warn("Command on closed directory",
			zap.String("command", DirectoryCommands.Name(cmd)),
			logfield.Path(d.path))
		return result.ErrInvalidHandle
	}

	switch cmd {
	case DirectoryRead:
		count, addr := buf[1], buf[3]
		size := uint64(count) * backends.EntrySize
		if size > math.MaxUint32 {
			return result.Wrapf(result.ErrInvalidBuffer, "%d entries do not fit in guest memory", count)
		}
		dst, err := req.Memory.Slice(addr, uint32(size))
		if err != nil {
			return result.Wrap(result.ErrInvalidBuffer, err)
		}

		entries := make([]backends.Entry, count)
		n, err := d.backend.Read(entries)
		if err != nil {
			return err
		}
		if err := backends.EncodeEntries(dst, entries[:n]); err != nil {
			return result.Wrap(result.ErrInvalidBuffer, err)
		}
		buf[2] = uint32(n)

		d.logger.Debug("Directory entries read",
			logfield.Path(d.path),
			zap.Uint32("requested", count),
			zap.Int("read", n))

	case DirectoryClose:
		d.backend.Close()
		d.closed = true
		d.logger.Debug("Directory closed", logfield.Path(d.path))

	default:
		d.logger.Error("Unimplemented directory command",
			zap.String("command", DirectoryCommands.Name(cmd)),
			logfield.Path(d.path))
		return result.ErrUnimplemented
	}

	return nil
}
