// Package ipc implements the fixed-layout command record exchanged between the guest
// and the filesystem service, along with the collaborator interfaces a request needs.
package ipc

import (
	"encoding/binary"
	"fmt"
)

// CommandBufferWords is the number of 32-bit words in one command record.
const CommandBufferWords = 0x40

// CommandBufferSize is the encoded size of a command record in bytes.
const CommandBufferSize = CommandBufferWords * 4

// Fixed word positions shared by every command.
const (
	HeaderWord = 0
	ResultWord = 1
)

// Command is the header word leading every request. It combines the command id
// with the number of normal and translate parameter words that follow.
type Command uint32

// MakeHeader builds a header word.
func MakeHeader(id uint16, normalParams, translateParams uint32) Command {
	return Command(uint32(id)<<16 | (normalParams&0x3F)<<6 | translateParams&0x3F)
}

// ID returns the command index.
func (c Command) ID() uint16 { return uint16(c >> 16) }

// NormalParams returns the count of plain parameter words.
func (c Command) NormalParams() uint32 { return uint32(c) >> 6 & 0x3F }

// TranslateParams returns the count of translated parameter words.
func (c Command) TranslateParams() uint32 { return uint32(c) & 0x3F }

func (c Command) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// CommandTable names the commands a resource understands.
type CommandTable map[Command]string

// Name returns the name registered for c, or a hex rendering for unknown commands.
func (t CommandTable) Name(c Command) string {
	if name, ok := t[c]; ok {
		return name
	}
	return "Unknown(" + c.String() + ")"
}

// Label returns the name registered for c, or "unknown". Unlike Name it has a
// bounded set of results, so it is safe as a metric label.
func (t CommandTable) Label(c Command) string {
	if name, ok := t[c]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether c is listed in the table.
func (t CommandTable) Known(c Command) bool {
	_, ok := t[c]
	return ok
}

// CommandBuffer is one command record. Responses are written in place.
type CommandBuffer [CommandBufferWords]uint32

// Header returns the leading command word.
func (b *CommandBuffer) Header() Command {
	return Command(b[HeaderWord])
}

// SetResult writes the status word.
func (b *CommandBuffer) SetResult(code uint32) {
	b[ResultWord] = code
}

// Result returns the status word.
func (b *CommandBuffer) Result() uint32 {
	return b[ResultWord]
}

// U64 reads a 64-bit value stored low word first at index i.
func (b *CommandBuffer) U64(i int) uint64 {
	return uint64(b[i]) | uint64(b[i+1])<<32
}

// SetU64 stores v low word first at index i.
func (b *CommandBuffer) SetU64(i int, v uint64) {
	b[i] = uint32(v)
	b[i+1] = uint32(v >> 32)
}

// Encode serializes the record as little-endian words.
func (b *CommandBuffer) Encode() []byte {
	out := make([]byte, CommandBufferSize)
	for i, w := range b {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// DecodeCommandBuffer parses a record from its little-endian encoding.
func DecodeCommandBuffer(data []byte) (*CommandBuffer, error) {
	if len(data) < CommandBufferSize {
		return nil, fmt.Errorf("command record too short: %d bytes, need %d", len(data), CommandBufferSize)
	}
	var b CommandBuffer
	for i := range b {
		b[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return &b, nil
}
