package noop

import (
	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/result"
)

// Factory is an archive type that is registered but has no content source.
// It is used for archive types whose images are not provided, such as RomFS.
type Factory struct {
	name string
}

// NewFactory creates a new noop archive factory
func NewFactory(name string) backends.ArchiveFactory {
	return &Factory{name: name}
}

// Name returns the archive type name
func (f *Factory) Name() string {
	return f.name
}

// Open always returns an error for noop archives
func (f *Factory) Open(path backends.Path) (backends.ArchiveBackend, error) {
	return nil, result.Wrapf(result.ErrUnimplemented, "archive not available: cannot open %s %s", f.name, path)
}

// Format always returns an error for noop archives
func (f *Factory) Format(path backends.Path) error {
	return result.Wrapf(result.ErrUnimplemented, "archive not available: cannot format %s %s", f.name, path)
}
