package ipc

import (
	"fmt"
)

// Memory gives access to guest memory referenced by command parameters.
type Memory interface {
	// Slice returns size bytes starting at addr. Writes to the slice are visible
	// to the guest.
	Slice(addr uint32, size uint32) ([]byte, error)
}

// FlatMemory maps one contiguous block of guest memory starting at Base.
type FlatMemory struct {
	Base uint32
	Data []byte
}

// NewFlatMemory allocates size bytes mapped at base.
func NewFlatMemory(base uint32, size int) *FlatMemory {
	return &FlatMemory{Base: base, Data: make([]byte, size)}
}

// Slice implements Memory.
func (m *FlatMemory) Slice(addr uint32, size uint32) ([]byte, error) {
	if addr < m.Base {
		return nil, fmt.Errorf("address 0x%08X below mapped base 0x%08X", addr, m.Base)
	}
	start := uint64(addr - m.Base)
	end := start + uint64(size)
	if end > uint64(len(m.Data)) {
		return nil, fmt.Errorf("range 0x%08X+0x%X exceeds mapped memory", addr, size)
	}
	return m.Data[start:end], nil
}

// Handler executes commands against one resource.
type Handler interface {
	// TypeName identifies the kind of resource in logs and metrics
	TypeName() string

	// Commands lists the commands the resource recognizes
	Commands() CommandTable

	// HandleSyncRequest executes the command in req.Buffer and writes its
	// response words. The status word is written by the caller.
	HandleSyncRequest(req *Request) error
}

// SessionTable hands out guest handles for resources.
type SessionTable interface {
	Create(h Handler) (uint32, error)
}

// InvalidHandle is the session handle written when none could be created.
const InvalidHandle uint32 = 0

// Request bundles a command record with the collaborators needed to execute it.
type Request struct {
	Buffer   *CommandBuffer
	Memory   Memory
	Sessions SessionTable
}

// Command returns the header of the request.
func (r *Request) Command() Command {
	return r.Buffer.Header()
}
