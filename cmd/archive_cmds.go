package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/archive"
	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/ipc"
)

const (
	// bufferBase is where the transfer buffer is mapped in guest memory
	bufferBase = 0x08000000

	chunkSize = 0x10000
	listBatch = 16
)

var (
	archivePath string
	widePaths   bool
)

func addArchiveCommands(root *cobra.Command) {
	formatCmd := &cobra.Command{
		Use:   "format <archive-type>",
		Short: "Erase an archive and leave it empty",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}

	lsCmd := &cobra.Command{
		Use:   "ls <archive-type> [directory]",
		Short: "List a directory inside an archive",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runList,
	}

	catCmd := &cobra.Command{
		Use:   "cat <archive-type> <file>",
		Short: "Print a file from an archive",
		Args:  cobra.ExactArgs(2),
		RunE:  runCat,
	}

	putCmd := &cobra.Command{
		Use:   "put <archive-type> <file> <host-file>",
		Short: "Copy a host file into an archive",
		Args:  cobra.ExactArgs(3),
		RunE:  runPut,
	}

	mkdirCmd := &cobra.Command{
		Use:   "mkdir <archive-type> <directory>",
		Short: "Create a directory inside an archive",
		Args:  cobra.ExactArgs(2),
		RunE: runMaintenance(func(m *archive.Manager, h archive.Handle, args []string) error {
			p, err := filePath(args[1])
			if err != nil {
				return err
			}
			return m.CreateDirectoryFromArchive(h, p)
		}),
	}

	rmCmd := &cobra.Command{
		Use:   "rm <archive-type> <file>",
		Short: "Delete a file inside an archive",
		Args:  cobra.ExactArgs(2),
		RunE: runMaintenance(func(m *archive.Manager, h archive.Handle, args []string) error {
			p, err := filePath(args[1])
			if err != nil {
				return err
			}
			return m.DeleteFileFromArchive(h, p)
		}),
	}

	rmdirCmd := &cobra.Command{
		Use:   "rmdir <archive-type> <directory>",
		Short: "Delete an empty directory inside an archive",
		Args:  cobra.ExactArgs(2),
		RunE: runMaintenance(func(m *archive.Manager, h archive.Handle, args []string) error {
			p, err := filePath(args[1])
			if err != nil {
				return err
			}
			return m.DeleteDirectoryFromArchive(h, p)
		}),
	}

	mvCmd := &cobra.Command{
		Use:   "mv <archive-type> <source> <destination>",
		Short: "Rename a file or directory inside an archive",
		Args:  cobra.ExactArgs(3),
		RunE: runMaintenance(func(m *archive.Manager, h archive.Handle, args []string) error {
			src, err := filePath(args[1])
			if err != nil {
				return err
			}
			dst, err := filePath(args[2])
			if err != nil {
				return err
			}
			if backend := m.Archive(h); backend != nil {
				if d, err := backend.OpenDirectory(src); err == nil {
					d.Close()
					return m.RenameDirectoryBetweenArchives(h, src, h, dst)
				}
			}
			return m.RenameFileBetweenArchives(h, src, h, dst)
		}),
	}

	for _, c := range []*cobra.Command{formatCmd, lsCmd, catCmd, putCmd, mkdirCmd, rmCmd, rmdirCmd, mvCmd} {
		c.Flags().StringVarP(&archivePath, "archive-path", "p", "", "Archive path: empty, hex:<bytes>, ext:<media>:<high>:<low>, sys:<high>:<low> or text")
		c.Flags().BoolVarP(&widePaths, "wide", "w", false, "Send file and directory paths as UTF-16 wchar paths")
		root.AddCommand(c)
	}
}

// withArchive opens the archive named by typeName and runs fn against it
func withArchive(typeName string, fn func(rt *runtime, h archive.Handle) error) (err error) {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer closeInto(&err, rt.close)

	id, err := archive.ParseIDCode(typeName)
	if err != nil {
		return err
	}
	path, err := parseArchivePath(archivePath)
	if err != nil {
		return err
	}

	h, err := rt.manager.OpenArchive(id, path)
	if err != nil {
		return fmt.Errorf("failed to open %s archive: %w", id, err)
	}

	return fn(rt, h)
}

func runMaintenance(op func(m *archive.Manager, h archive.Handle, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withArchive(args[0], func(rt *runtime, h archive.Handle) error {
			return op(rt.manager, h, args)
		})
	}
}

func runFormat(cmd *cobra.Command, args []string) (err error) {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer closeInto(&err, rt.close)

	id, err := archive.ParseIDCode(args[0])
	if err != nil {
		return err
	}
	path, err := parseArchivePath(archivePath)
	if err != nil {
		return err
	}

	if err := rt.manager.FormatArchive(id, path); err != nil {
		return fmt.Errorf("failed to format %s archive: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Formatted %s archive\n", id)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	dir := "/"
	if len(args) > 1 {
		dir = args[1]
	}

	return withArchive(args[0], func(rt *runtime, h archive.Handle) error {
		p, err := filePath(dir)
		if err != nil {
			return err
		}
		d, err := rt.manager.OpenDirectoryFromArchive(h, p)
		if err != nil {
			return fmt.Errorf("failed to open directory %s: %w", dir, err)
		}
		defer closeResource(rt, openSession(rt, d), d, archive.DirectoryClose)

		mem := ipc.NewFlatMemory(bufferBase, listBatch*backends.EntrySize)
		out := cmd.OutOrStdout()

		for {
			var buf ipc.CommandBuffer
			buf[ipc.HeaderWord] = uint32(archive.DirectoryRead)
			buf[1] = listBatch
			buf[3] = bufferBase
			if code := rt.dispatcher.Dispatch(d, &buf, mem); code.IsError() {
				return code
			}

			n := int(buf[2])
			for i := 0; i < n; i++ {
				var e backends.Entry
				if err := e.UnmarshalBinary(mem.Data[i*backends.EntrySize:]); err != nil {
					return err
				}
				if e.IsDirectory {
					fmt.Fprintf(out, "%-40s <DIR>\n", e.Name+"/")
				} else {
					fmt.Fprintf(out, "%-40s %d\n", e.Name, e.FileSize)
				}
			}
			if n < listBatch {
				return nil
			}
		}
	})
}

func runCat(cmd *cobra.Command, args []string) error {
	return withArchive(args[0], func(rt *runtime, h archive.Handle) error {
		p, err := filePath(args[1])
		if err != nil {
			return err
		}
		f, err := rt.manager.OpenFileFromArchive(h, p, backends.Mode{Read: true})
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[1], err)
		}
		defer closeResource(rt, openSession(rt, f), f, archive.FileClose)

		_, err = copyOut(rt, f, cmd.OutOrStdout())
		return err
	})
}

// copyOut streams a file resource to w through Read commands
func copyOut(rt *runtime, f *archive.File, w io.Writer) (uint64, error) {
	mem := ipc.NewFlatMemory(bufferBase, chunkSize)
	var offset uint64

	for {
		var buf ipc.CommandBuffer
		buf[ipc.HeaderWord] = uint32(archive.FileRead)
		buf.SetU64(1, offset)
		buf[3] = chunkSize
		buf[5] = bufferBase
		if code := rt.dispatcher.Dispatch(f, &buf, mem); code.IsError() {
			return offset, code
		}

		n := buf[2]
		if n == 0 {
			return offset, nil
		}
		if _, err := w.Write(mem.Data[:n]); err != nil {
			return offset, err
		}
		offset += uint64(n)
	}
}

func runPut(cmd *cobra.Command, args []string) error {
	host, err := os.Open(args[2])
	if err != nil {
		return fmt.Errorf("failed to open host file: %w", err)
	}
	defer host.Close()

	return withArchive(args[0], func(rt *runtime, h archive.Handle) error {
		p, err := filePath(args[1])
		if err != nil {
			return err
		}
		f, err := rt.manager.OpenFileFromArchive(h, p, backends.Mode{Write: true, Create: true})
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[1], err)
		}
		defer closeResource(rt, openSession(rt, f), f, archive.FileClose)

		mem := ipc.NewFlatMemory(bufferBase, chunkSize)
		var offset uint64
		for {
			n, readErr := host.Read(mem.Data)
			if n > 0 {
				var buf ipc.CommandBuffer
				buf[ipc.HeaderWord] = uint32(archive.FileWrite)
				buf.SetU64(1, offset)
				buf[3] = uint32(n)
				buf[4] = 0
				buf[6] = bufferBase
				if code := rt.dispatcher.Dispatch(f, &buf, mem); code.IsError() {
					return code
				}
				offset += uint64(buf[2])
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return fmt.Errorf("failed to read host file: %w", readErr)
			}
		}

		// Drop any previous tail, then commit
		for _, words := range [][]uint32{{uint32(archive.FileSetSize), uint32(offset), uint32(offset >> 32)}, {uint32(archive.FileFlush)}} {
			var buf ipc.CommandBuffer
			copy(buf[:], words)
			if code := rt.dispatcher.Dispatch(f, &buf, mem); code.IsError() {
				return code
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %d bytes to %s\n", offset, args[1])
		return nil
	})
}

// resource is an open file or directory
type resource interface {
	ipc.Handler
	Path() backends.Path
}

// filePath converts a command line path into an archive path
func filePath(s string) (backends.Path, error) {
	if widePaths {
		return backends.WidePath(s)
	}
	return backends.StringPath(s), nil
}

// openSession registers r in the session table the way the service does for the
// guest. A failure leaves the resource usable without a session.
func openSession(rt *runtime, r resource) uint32 {
	session, err := rt.sessions.Create(r)
	if err != nil {
		rt.logger.Warn("Failed to register session", logfield.Path(r.Path()), zap.Error(err))
		return ipc.InvalidHandle
	}
	return session
}

// closeResource sends a Close command to the resource and releases its session
func closeResource(rt *runtime, session uint32, r resource, closeCmd ipc.Command) {
	var buf ipc.CommandBuffer
	buf[ipc.HeaderWord] = uint32(closeCmd)
	if code := rt.dispatcher.Dispatch(r, &buf, nil); code.IsError() {
		rt.logger.Warn("Failed to close resource",
			zap.String("resource", r.TypeName()),
			logfield.Path(r.Path()),
			zap.Error(code))
	}

	if session == ipc.InvalidHandle {
		return
	}
	if err := rt.sessions.Release(session); err != nil {
		rt.logger.Warn("Failed to release session", zap.Uint32("session", session), zap.Error(err))
	}
}
