// Package result defines the 32-bit result codes returned by the filesystem service.
// A code packs a description, the originating module, a summary and a severity level
// into one word that is written back to the caller's command buffer.
package result

import (
	"errors"
	"fmt"
)

// Description identifies the specific failure.
type Description uint32

// Module identifies the service that produced the result.
type Module uint32

// Summary groups failures into broad categories.
type Summary uint32

// Level is the severity of a failure.
type Level uint32

const (
	DescSuccess            Description = 0
	DescFSNotFound         Description = 100
	DescFSAlreadyExists    Description = 190
	DescFSInvalidOpenFlags Description = 230
	DescFSNotFormatted     Description = 340
	DescFSInvalidPath      Description = 702
	DescInvalidEnumValue   Description = 1005
	DescNoData             Description = 1007
	DescNotImplemented     Description = 1012
	DescInvalidPointer     Description = 1014
	DescInvalidHandle      Description = 1015
	DescNotFound           Description = 1018
)

const (
	ModuleCommon Module = 0
	ModuleKernel Module = 1
	ModuleFS     Module = 17
)

const (
	SummarySuccess         Summary = 0
	SummaryNothingHappened Summary = 1
	SummaryNotFound        Summary = 4
	SummaryInvalidState    Summary = 5
	SummaryNotSupported    Summary = 6
	SummaryInvalidArgument Summary = 7
	SummaryCanceled        Summary = 9
	SummaryInternal        Summary = 11
)

const (
	LevelSuccess   Level = 0
	LevelStatus    Level = 25
	LevelTemporary Level = 26
	LevelPermanent Level = 27
	LevelUsage     Level = 28
	LevelFatal     Level = 31
)

// Code is a packed result word. Bit 31 is set for every failure.
type Code uint32

// Success is the result written for every command that completed.
const Success Code = 0

// ErrUnclassified is the generic failure for errors that carry no code. It is
// provisional: callers that can name the failure more precisely should do so.
const ErrUnclassified Code = 0xFFFFFFFF

var (
	// ErrInvalidHandle is returned when an archive handle or resource is not open.
	ErrInvalidHandle = New(DescInvalidHandle, ModuleFS, SummaryInvalidArgument, LevelPermanent)

	// ErrArchiveNotFound is returned for unregistered archive types and missing directories.
	ErrArchiveNotFound = New(DescNotFound, ModuleFS, SummaryNotFound, LevelPermanent)

	// ErrFileNotFound is returned when a backend cannot open the requested path.
	ErrFileNotFound = New(DescFSNotFound, ModuleFS, SummaryNotFound, LevelStatus)

	// ErrNoEffect is returned when a create or delete ran but changed nothing.
	ErrNoEffect = New(DescNoData, ModuleFS, SummaryCanceled, LevelStatus)

	// ErrNothingHappened is returned when a rename ran but changed nothing.
	ErrNothingHappened = New(DescNoData, ModuleFS, SummaryNothingHappened, LevelStatus)

	// ErrUnimplemented is returned for unknown commands and unsupported operations.
	ErrUnimplemented = Unimplemented(ModuleFS)

	ErrNotFormatted     = New(DescFSNotFormatted, ModuleFS, SummaryInvalidState, LevelStatus)
	ErrAlreadyExists    = New(DescFSAlreadyExists, ModuleFS, SummaryNothingHappened, LevelStatus)
	ErrInvalidOpenFlags = New(DescFSInvalidOpenFlags, ModuleFS, SummaryCanceled, LevelStatus)
	ErrInvalidPath      = New(DescFSInvalidPath, ModuleFS, SummaryInvalidArgument, LevelUsage)
	ErrInvalidBuffer    = New(DescInvalidPointer, ModuleFS, SummaryInvalidArgument, LevelPermanent)
	ErrUnsupportedMedia = New(DescInvalidEnumValue, ModuleFS, SummaryInvalidArgument, LevelPermanent)
)

// New packs the four result fields into a Code.
func New(d Description, m Module, s Summary, l Level) Code {
	return Code(uint32(d)&0x3FF |
		(uint32(m)&0xFF)<<10 |
		(uint32(s)&0x3F)<<21 |
		(uint32(l)&0x1F)<<27)
}

// Unimplemented returns the code reported for functionality a module does not provide.
func Unimplemented(m Module) Code {
	return New(DescNotImplemented, m, SummaryNotSupported, LevelPermanent)
}

func (c Code) Description() Description { return Description(uint32(c) & 0x3FF) }
func (c Code) Module() Module           { return Module(uint32(c) >> 10 & 0xFF) }
func (c Code) Summary() Summary         { return Summary(uint32(c) >> 21 & 0x3F) }
func (c Code) Level() Level             { return Level(uint32(c) >> 27 & 0x1F) }

// IsError reports whether the code denotes a failure.
func (c Code) IsError() bool { return uint32(c)&(1<<31) != 0 }

// Raw returns the word written to the command buffer.
func (c Code) Raw() uint32 { return uint32(c) }

func (c Code) Error() string {
	return c.String()
}

func (c Code) String() string {
	if c == Success {
		return "success"
	}
	if c == ErrUnclassified {
		return "unclassified failure (0xFFFFFFFF)"
	}
	return fmt.Sprintf("result 0x%08X (description=%s, module=%s, summary=%s, level=%s)",
		uint32(c), c.Description(), c.Module(), c.Summary(), c.Level())
}

// Error carries a result code together with the failure that produced it.
type Error struct {
	Code Code
	Err  error
}

// Wrap attaches cause to code. errors.Is and errors.As see both.
func Wrap(code Code, cause error) error {
	if cause == nil {
		return code
	}
	return &Error{Code: code, Err: cause}
}

// Wrapf attaches a formatted cause to code.
func Wrapf(code Code, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Err, e.Code)
}

func (e *Error) Unwrap() []error {
	return []error{e.Code, e.Err}
}

// FromError extracts the code carried by err. Errors without a code map to
// ErrUnclassified.
func FromError(err error) Code {
	if err == nil {
		return Success
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return ErrUnclassified
}
