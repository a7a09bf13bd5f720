// Package archive manages archive types and open archive instances, and exposes
// open files and directories as command handling resources.
package archive

import "fmt"

// IDCode identifies a kind of archive. Exactly one factory is registered per code.
type IDCode uint32

const (
	RomFS             IDCode = 0x00000003
	SaveData          IDCode = 0x00000004
	ExtSaveData       IDCode = 0x00000006
	SharedExtSaveData IDCode = 0x00000007
	SystemSaveData    IDCode = 0x00000008
	SDMC              IDCode = 0x00000009
	SDMCWriteOnly     IDCode = 0x0000000A
	SaveDataCheck     IDCode = 0x2345678A
)

var idNames = map[IDCode]string{
	RomFS:             "RomFS",
	SaveData:          "SaveData",
	ExtSaveData:       "ExtSaveData",
	SharedExtSaveData: "SharedExtSaveData",
	SystemSaveData:    "SystemSaveData",
	SDMC:              "SDMC",
	SDMCWriteOnly:     "SDMCWriteOnly",
	SaveDataCheck:     "SaveDataCheck",
}

func (id IDCode) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("IDCode(0x%08X)", uint32(id))
}

// ParseIDCode resolves an archive type by name.
func ParseIDCode(name string) (IDCode, error) {
	for id, n := range idNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown archive type: %s", name)
}

// Handle identifies an open archive instance. Zero is never issued.
type Handle uint64

// InvalidHandle is the reserved handle value
const InvalidHandle Handle = 0

func (h Handle) String() string {
	return fmt.Sprintf("0x%X", uint64(h))
}
