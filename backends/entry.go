package backends

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// EntrySize is the size of one directory entry in guest memory.
	EntrySize = 0x228

	// FilenameLength is the capacity of the UTF-16 name field, terminator included.
	FilenameLength = 0x106

	shortNameOffset = FilenameLength * 2
	extensionOffset = shortNameOffset + 10
	flagsOffset     = extensionOffset + 4
	fileSizeOffset  = 0x220
)

// Entry describes one item returned by a directory listing.
type Entry struct {
	Name        string
	ShortName   string // 8.3 base name
	Extension   string // 8.3 extension
	IsDirectory bool
	IsHidden    bool
	IsArchive   bool
	IsReadOnly  bool
	FileSize    uint64
}

// NewEntry fills an entry for name, deriving the 8.3 short name fields.
func NewEntry(name string, isDir bool, size uint64) Entry {
	short, ext := shortName(name)
	e := Entry{
		Name:        name,
		ShortName:   short,
		Extension:   ext,
		IsDirectory: isDir,
		IsArchive:   !isDir,
	}
	if !isDir {
		e.FileSize = size
	}
	return e
}

// MarshalBinary encodes the entry in its EntrySize guest layout.
func (e Entry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EntrySize)
	if err := e.encodeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (e Entry) encodeTo(buf []byte) error {
	if len(buf) < EntrySize {
		return fmt.Errorf("entry buffer too small: %d bytes", len(buf))
	}
	clear(buf[:EntrySize])

	name, err := utf16le.NewEncoder().Bytes([]byte(e.Name))
	if err != nil {
		return fmt.Errorf("failed to encode entry name %q: %w", e.Name, err)
	}
	// keep room for the terminator
	if limit := (FilenameLength - 1) * 2; len(name) > limit {
		name = name[:limit]
	}
	copy(buf, name)

	copy(buf[shortNameOffset:shortNameOffset+8], e.ShortName)
	copy(buf[extensionOffset:extensionOffset+3], e.Extension)

	flags := buf[flagsOffset:]
	flags[1] = 1
	flags[2] = boolByte(e.IsDirectory)
	flags[3] = boolByte(e.IsHidden)
	flags[4] = boolByte(e.IsArchive)
	flags[5] = boolByte(e.IsReadOnly)

	binary.LittleEndian.PutUint64(buf[fileSizeOffset:], e.FileSize)
	return nil
}

// UnmarshalBinary decodes an entry from its guest layout.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < EntrySize {
		return fmt.Errorf("entry needs %d bytes, got %d", EntrySize, len(data))
	}

	raw := data[:FilenameLength*2]
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			raw = raw[:i]
			break
		}
	}
	name, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return fmt.Errorf("failed to decode entry name: %w", err)
	}

	flags := data[flagsOffset:]
	*e = Entry{
		Name:        string(name),
		ShortName:   strings.TrimRight(string(data[shortNameOffset:shortNameOffset+8]), "\x00"),
		Extension:   strings.TrimRight(string(data[extensionOffset:extensionOffset+3]), "\x00"),
		IsDirectory: flags[2] != 0,
		IsHidden:    flags[3] != 0,
		IsArchive:   flags[4] != 0,
		IsReadOnly:  flags[5] != 0,
		FileSize:    binary.LittleEndian.Uint64(data[fileSizeOffset:]),
	}
	return nil
}

// EncodeEntries writes entries back to back into dst, which must hold
// len(entries)*EntrySize bytes.
func EncodeEntries(dst []byte, entries []Entry) error {
	if len(dst) < len(entries)*EntrySize {
		return fmt.Errorf("destination holds %d bytes, need %d", len(dst), len(entries)*EntrySize)
	}
	for i, e := range entries {
		if err := e.encodeTo(dst[i*EntrySize:]); err != nil {
			return err
		}
	}
	return nil
}

func shortName(name string) (string, string) {
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i+1:]
	}
	base = strings.ToUpper(strings.ReplaceAll(base, " ", ""))
	ext = strings.ToUpper(ext)
	if len(base) > 8 {
		base = base[:6] + "~1"
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	return base, ext
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
