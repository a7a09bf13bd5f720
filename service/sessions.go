package service

import (
	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/metrics"
	"github.com/ebogdum/archivefs/result"
)

// Sessions maps guest session handles to the resources they refer to. Several
// handles may refer to the same resource.
type Sessions struct {
	handlers map[uint32]ipc.Handler
	next     uint32
	logger   *zap.Logger
}

// NewSessions creates an empty session table.
func NewSessions(logger *zap.Logger) *Sessions {
	return &Sessions{
		handlers: make(map[uint32]ipc.Handler),
		next:     1,
		logger:   logger,
	}
}

// Create registers h and returns a new handle for it. Handle 0 is never issued.
func (s *Sessions) Create(h ipc.Handler) (uint32, error) {
	if h == nil {
		return ipc.InvalidHandle, result.Wrapf(result.ErrInvalidHandle, "cannot register a nil handler")
	}
	for {
		handle := s.next
		s.next++
		if handle == ipc.InvalidHandle {
			continue
		}
		if _, taken := s.handlers[handle]; taken {
			continue
		}

		s.handlers[handle] = h
		metrics.OpenSessions.Set(float64(len(s.handlers)))

		s.logger.Debug("Session created",
			zap.Uint32("session", handle),
			zap.String("resource", h.TypeName()))

		return handle, nil
	}
}

// Get returns the resource behind handle.
func (s *Sessions) Get(handle uint32) (ipc.Handler, error) {
	h, ok := s.handlers[handle]
	if !ok {
		return nil, result.ErrInvalidHandle
	}
	return h, nil
}

// Release forgets handle. The resource itself is not closed.
func (s *Sessions) Release(handle uint32) error {
	if _, ok := s.handlers[handle]; !ok {
		return result.ErrInvalidHandle
	}
	delete(s.handlers, handle)
	metrics.OpenSessions.Set(float64(len(s.handlers)))
	return nil
}

// Len returns the number of registered sessions.
func (s *Sessions) Len() int {
	return len(s.handlers)
}
