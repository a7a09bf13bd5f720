package hostdir

import (
	"encoding/binary"
	"fmt"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/result"
)

// SystemID and SDCardID name the per-console directories. Without console
// identification both are all zeros.
const (
	SystemID = "00000000000000000000000000000000"
	SDCardID = "00000000000000000000000000000000"
)

// Layout maps save-data containers to directories on the NAND and SDMC roots.
type Layout struct{}

// NintendoDir is the per-console directory at the SDMC root.
func (Layout) NintendoDir() string {
	return fmt.Sprintf("/Nintendo 3DS/%s/%s", SystemID, SDCardID)
}

// SaveDataDir is the container of the save data of a program on SDMC.
func (l Layout) SaveDataDir(programID uint64) string {
	return fmt.Sprintf("%s/title/%08x/%08x/data", l.NintendoDir(), uint32(programID>>32), uint32(programID))
}

// ExtSaveDataDir is the container of an extra-data save on the given media. NAND
// holds shared extra data.
func (l Layout) ExtSaveDataDir(media backends.MediaType, high, low uint32) (string, error) {
	switch media {
	case backends.MediaNAND:
		return fmt.Sprintf("/data/%s/extdata/%08x/%08x", SystemID, high, low), nil
	case backends.MediaSDMC:
		return fmt.Sprintf("%s/extdata/%08x/%08x", l.NintendoDir(), high, low), nil
	default:
		return "", result.Wrapf(result.ErrUnsupportedMedia, "no extra data on %s", media)
	}
}

// SystemSaveDataDir is the container of a system save on NAND.
func (Layout) SystemSaveDataDir(high, low uint32) string {
	return fmt.Sprintf("/data/%s/sysdata/%08x/%08x", SystemID, high, low)
}

// ExtSaveDataPath builds the 12-byte binary path that opens extra data.
func ExtSaveDataPath(media backends.MediaType, high, low uint32) backends.Path {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:], uint32(media))
	binary.LittleEndian.PutUint32(buf[4:], high)
	binary.LittleEndian.PutUint32(buf[8:], low)
	return backends.Path{Type: backends.PathBinary, Data: buf}
}

// SystemSaveDataPath builds the 8-byte binary path that opens a system save.
func SystemSaveDataPath(high, low uint32) backends.Path {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], high)
	binary.LittleEndian.PutUint32(buf[4:], low)
	return backends.Path{Type: backends.PathBinary, Data: buf}
}

func parseExtSaveDataPath(p backends.Path) (high, low uint32, err error) {
	data := p.AsBinary()
	if p.Type != backends.PathBinary || len(data) < 12 {
		return 0, 0, result.Wrapf(result.ErrInvalidPath, "extra data path must be 12 binary bytes, got %s", p)
	}
	return binary.LittleEndian.Uint32(data[4:]), binary.LittleEndian.Uint32(data[8:]), nil
}

func parseSystemSaveDataPath(p backends.Path) (high, low uint32, err error) {
	data := p.AsBinary()
	if p.Type != backends.PathBinary || len(data) < 8 {
		return 0, 0, result.Wrapf(result.ErrInvalidPath, "system save path must be 8 binary bytes, got %s", p)
	}
	return binary.LittleEndian.Uint32(data[0:]), binary.LittleEndian.Uint32(data[4:]), nil
}
