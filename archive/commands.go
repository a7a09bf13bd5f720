package archive

import "github.com/ebogdum/archivefs/ipc"

// Commands shared by files and directories
const (
	CommandDummy1  ipc.Command = 0x000100C6
	CommandControl ipc.Command = 0x040100C4
)

// File commands
const (
	FileOpenSubFile   ipc.Command = 0x08010100
	FileRead          ipc.Command = 0x080200C2
	FileWrite         ipc.Command = 0x08030102
	FileGetSize       ipc.Command = 0x08040000
	FileSetSize       ipc.Command = 0x08050080
	FileGetAttributes ipc.Command = 0x08060000
	FileSetAttributes ipc.Command = 0x08070040
	FileClose         ipc.Command = 0x08080000
	FileFlush         ipc.Command = 0x08090000
	FileSetPriority   ipc.Command = 0x080A0040
	FileGetPriority   ipc.Command = 0x080B0000
	FileOpenLinkFile  ipc.Command = 0x080C0000
)

// Directory commands
const (
	DirectoryRead  ipc.Command = 0x08010042
	DirectoryClose ipc.Command = 0x08020000
)

// FileCommands lists every command a File resource recognizes.
var FileCommands = ipc.CommandTable{
	CommandDummy1:     "Dummy1",
	CommandControl:    "Control",
	FileOpenSubFile:   "OpenSubFile",
	FileRead:          "Read",
	FileWrite:         "Write",
	FileGetSize:       "GetSize",
	FileSetSize:       "SetSize",
	FileGetAttributes: "GetAttributes",
	FileSetAttributes: "SetAttributes",
	FileClose:         "Close",
	FileFlush:         "Flush",
	FileSetPriority:   "SetPriority",
	FileGetPriority:   "GetPriority",
	FileOpenLinkFile:  "OpenLinkFile",
}

// DirectoryCommands lists every command a Directory resource recognizes.
var DirectoryCommands = ipc.CommandTable{
	CommandDummy1:  "Dummy1",
	CommandControl: "Control",
	DirectoryRead:  "Read",
	DirectoryClose: "Close",
}
