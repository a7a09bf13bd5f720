// Package service routes command records to file and directory resources and
// tracks the sessions that refer to them.
package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/archivefs/ipc"
	"github.com/ebogdum/archivefs/internal/logfield"
	"github.com/ebogdum/archivefs/metrics"
	"github.com/ebogdum/archivefs/result"
)

// Dispatcher executes command records against resources. Every dispatch writes the
// status word, whatever the handler does.
type Dispatcher struct {
	sessions ipc.SessionTable
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. sessions receives resources that handlers
// register, such as linked files; it may be nil.
func NewDispatcher(sessions ipc.SessionTable, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		logger:   logger,
	}
}

// Dispatch runs the command in buf against h and returns the status that was
// written to the result word.
func (d *Dispatcher) Dispatch(h ipc.Handler, buf *ipc.CommandBuffer, mem ipc.Memory) (code result.Code) {
	start := time.Now()
	cmd := buf.Header()
	resource := h.TypeName()
	label := h.Commands().Label(cmd)

	defer func() {
		if r := recover(); r != nil {
			metrics.DispatchPanicsTotal.Inc()
			d.logger.Error("Handler panicked",
				zap.String("resource", resource),
				zap.Stringer("command", cmd),
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"))
			code = result.ErrUnclassified
		}

		buf.SetResult(code.Raw())
		metrics.DispatchTotal.WithLabelValues(resource, label, metrics.Status(code.Raw())).Inc()
		metrics.DispatchDuration.WithLabelValues(resource, label).Observe(time.Since(start).Seconds())
	}()

	err := h.HandleSyncRequest(&ipc.Request{
		Buffer:   buf,
		Memory:   mem,
		Sessions: d.sessions,
	})
	code = result.FromError(err)

	if code.IsError() {
		d.logger.Debug("Command failed",
			zap.String("resource", resource),
			zap.Stringer("command", cmd),
			logfield.Code(code.Raw()),
			zap.Error(err))
	}

	return code
}
