package result

import "fmt"

var descriptionNames = map[Description]string{
	DescSuccess:            "Success",
	DescFSNotFound:         "FS_NotFound",
	DescFSAlreadyExists:    "FS_AlreadyExists",
	DescFSInvalidOpenFlags: "FS_InvalidOpenFlags",
	DescFSNotFormatted:     "FS_NotFormatted",
	DescFSInvalidPath:      "FS_InvalidPath",
	DescInvalidEnumValue:   "InvalidEnumValue",
	DescNoData:             "NoData",
	DescNotImplemented:     "NotImplemented",
	DescInvalidPointer:     "InvalidPointer",
	DescInvalidHandle:      "InvalidHandle",
	DescNotFound:           "NotFound",
}

var moduleNames = map[Module]string{
	ModuleCommon: "Common",
	ModuleKernel: "Kernel",
	ModuleFS:     "FS",
}

var summaryNames = map[Summary]string{
	SummarySuccess:         "Success",
	SummaryNothingHappened: "NothingHappened",
	SummaryNotFound:        "NotFound",
	SummaryInvalidState:    "InvalidState",
	SummaryNotSupported:    "NotSupported",
	SummaryInvalidArgument: "InvalidArgument",
	SummaryCanceled:        "Canceled",
	SummaryInternal:        "Internal",
}

var levelNames = map[Level]string{
	LevelSuccess:   "Success",
	LevelStatus:    "Status",
	LevelTemporary: "Temporary",
	LevelPermanent: "Permanent",
	LevelUsage:     "Usage",
	LevelFatal:     "Fatal",
}

func (d Description) String() string { return lookup(descriptionNames, d) }
func (m Module) String() string      { return lookup(moduleNames, m) }
func (s Summary) String() string     { return lookup(summaryNames, s) }
func (l Level) String() string       { return lookup(levelNames, l) }

func lookup[K ~uint32](names map[K]string, k K) string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("%d", uint32(k))
}
