package backends

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// PathType selects how the bytes of a Path are interpreted.
type PathType uint32

const (
	PathInvalid PathType = 0
	PathEmpty   PathType = 1
	PathBinary  PathType = 2
	PathChar    PathType = 3
	PathWchar   PathType = 4
)

func (t PathType) String() string {
	switch t {
	case PathEmpty:
		return "empty"
	case PathBinary:
		return "binary"
	case PathChar:
		return "char"
	case PathWchar:
		return "wchar"
	default:
		return "invalid"
	}
}

// Path is an opaque address inside an archive. Only the backend that receives it
// decides what it means.
type Path struct {
	Type PathType
	Data []byte
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EmptyPath returns a path with no content.
func EmptyPath() Path {
	return Path{Type: PathEmpty}
}

// BinaryPath returns a path carrying raw bytes.
func BinaryPath(data []byte) Path {
	return Path{Type: PathBinary, Data: append([]byte(nil), data...)}
}

// StringPath returns a char path for s.
func StringPath(s string) Path {
	return Path{Type: PathChar, Data: []byte(s)}
}

// NewPath builds a path from the type word and buffer sent by the guest. Char and
// wchar buffers carry a trailing terminator which is stripped.
func NewPath(t PathType, data []byte) Path {
	buf := append([]byte(nil), data...)
	switch t {
	case PathChar:
		if i := strings.IndexByte(string(buf), 0); i >= 0 {
			buf = buf[:i]
		}
	case PathWchar:
		for i := 0; i+1 < len(buf); i += 2 {
			if buf[i] == 0 && buf[i+1] == 0 {
				buf = buf[:i]
				break
			}
		}
	}
	return Path{Type: t, Data: buf}
}

// WidePath returns a wchar path for s, encoded the way the guest sends it.
func WidePath(s string) (Path, error) {
	data, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return Path{}, fmt.Errorf("failed to encode wchar path %q: %w", s, err)
	}
	return NewPath(PathWchar, append(data, 0, 0)), nil
}

// AsString interprets the path as text. Binary and invalid paths do not convert.
func (p Path) AsString() (string, error) {
	switch p.Type {
	case PathEmpty:
		return "", nil
	case PathChar:
		return string(p.Data), nil
	case PathWchar:
		s, err := utf16le.NewDecoder().Bytes(p.Data)
		if err != nil {
			return "", fmt.Errorf("failed to decode wchar path: %w", err)
		}
		return string(s), nil
	default:
		return "", fmt.Errorf("%s path cannot be used as a string", p.Type)
	}
}

// AsBinary returns the raw bytes of the path.
func (p Path) AsBinary() []byte {
	return p.Data
}

func (p Path) String() string {
	switch p.Type {
	case PathEmpty:
		return "[empty]"
	case PathChar, PathWchar:
		if s, err := p.AsString(); err == nil {
			return s
		}
	}
	return fmt.Sprintf("[%s %s]", p.Type, hex.EncodeToString(p.Data))
}

// Mode holds the open flags passed through to backends.
type Mode struct {
	Read   bool
	Write  bool
	Create bool
}

// Raw encodes the mode as the guest's open-flags word.
func (m Mode) Raw() uint32 {
	var raw uint32
	if m.Read {
		raw |= 0x1
	}
	if m.Write {
		raw |= 0x2
	}
	if m.Create {
		raw |= 0x4
	}
	return raw
}

// MediaType selects the physical storage that holds a save-data container.
type MediaType uint32

const (
	MediaNAND     MediaType = 0
	MediaSDMC     MediaType = 1
	MediaGameCard MediaType = 2
)

func (m MediaType) String() string {
	switch m {
	case MediaNAND:
		return "nand"
	case MediaSDMC:
		return "sdmc"
	case MediaGameCard:
		return "gamecard"
	default:
		return fmt.Sprintf("media(%d)", uint32(m))
	}
}
