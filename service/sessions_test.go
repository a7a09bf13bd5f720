package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/result"
)

func TestSessionsCreateAndGet(t *testing.T) {
	s := NewSessions(zaptest.NewLogger(t))
	h := funcHandler(func(*ipc.Request) error { return nil })

	first, err := s.Create(h)
	require.NoError(t, err)
	second, err := s.Create(h)
	require.NoError(t, err)

	assert.NotEqual(t, ipc.InvalidHandle, first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(second)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = s.Get(ipc.InvalidHandle)
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(err))
}

func TestSessionsRelease(t *testing.T) {
	s := NewSessions(zaptest.NewLogger(t))
	handle, err := s.Create(funcHandler(func(*ipc.Request) error { return nil }))
	require.NoError(t, err)

	require.NoError(t, s.Release(handle))
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(s.Release(handle)))
	_, err = s.Get(handle)
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(err))
}

func TestSessionsSkipZeroAndLiveHandles(t *testing.T) {
	s := NewSessions(zaptest.NewLogger(t))
	h := funcHandler(func(*ipc.Request) error { return nil })

	live, err := s.Create(h)
	require.NoError(t, err)
	require.Equal(t, uint32(1), live)

	s.next = 0xFFFFFFFF
	last, err := s.Create(h)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), last)

	wrapped, err := s.Create(h)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), wrapped)
}

func TestSessionsRejectNil(t *testing.T) {
	s := NewSessions(zaptest.NewLogger(t))

	_, err := s.Create(nil)
	assert.Equal(t, result.ErrInvalidHandle, result.FromError(err))
}
