// Package panicbridge runs the client's execution units and turns any failure
// in them into an Error instruction for the orchestrator.
//
// A unit never displays or recovers its own failure. Whether it panics or
// returns an error, the bridge reports it through the same Sink, so the
// orchestrator handles every failure on one path without knowing which unit
// failed.
package panicbridge

import (
	"fmt"
	"sync"

	"github.com/go-errors/errors"
	"go.uber.org/zap"

	"github.com/tlinford/zellij/internal/channel"
	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/ipc"
)

// Sink receives failure reports.
type Sink interface {
	Fail(message string, ctx errctx.Context)
}

// ChannelSink reports failures as Error instructions on the client channel.
type ChannelSink struct {
	sender *channel.Sender[ipc.ClientInstruction]
}

// NewChannelSink creates a sink sending on sender.
func NewChannelSink(sender *channel.Sender[ipc.ClientInstruction]) *ChannelSink {
	return &ChannelSink{sender: sender}
}

// Fail sends Error(message).
func (s *ChannelSink) Fail(message string, ctx errctx.Context) {
	s.sender.Send(ipc.Error(message), ctx)
}

// Bridge spawns units whose failures go to a Sink. It has no reset: once
// installed it stays in effect for every unit it starts.
type Bridge struct {
	sink   Sink
	logger *zap.Logger
}

// New creates a bridge reporting to sink.
func New(sink Sink, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{sink: sink, logger: logger}
}

// Handle tracks a running unit.
type Handle struct {
	name string
	done chan struct{}

	mu    sync.Mutex
	trail errctx.Context
}

// Name returns the unit name.
func (h *Handle) Name() string {
	return h.name
}

// Done is closed when the unit has returned and any failure was reported.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Record sets the trail of the instruction the unit is handling. A failure
// report starts from the last recorded trail.
func (h *Handle) Record(ctx errctx.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trail = ctx
}

func (h *Handle) current() errctx.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.trail
}

// Go runs fn on its own goroutine, passing it its own handle. A panic or a
// non-nil error from fn is reported to the sink before the handle completes.
func (b *Bridge) Go(name string, fn func(h *Handle) error) *Handle {
	h := &Handle{name: name, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer b.recoverPanic(h)

		b.logger.Debug("unit started", zap.String("unit", name))
		if err := fn(h); err != nil {
			b.report(h, fmt.Sprintf("thread %s failed: %v", name, err), errors.Wrap(err, 1))
			return
		}
		b.logger.Debug("unit finished", zap.String("unit", name))
	}()
	return h
}

func (b *Bridge) recoverPanic(h *Handle) {
	r := recover()
	if r == nil {
		return
	}
	b.report(h, fmt.Sprintf("thread %s panicked: %v", h.name, r), errors.Wrap(r, 2))
}

func (b *Bridge) report(h *Handle, headline string, cause *errors.Error) {
	handling := h.current()
	ctx := handling.AddCall(errctx.Thread(h.name))
	message := fmt.Sprintf("%s\n\n%s\n%s", headline, ctx, cause.Stack())

	fields := []zap.Field{
		zap.String("unit", h.name),
		zap.String("error", headline),
	}
	if last, ok := handling.Last(); ok {
		fields = append(fields, zap.Stringer("handling", last))
	}
	b.logger.Error("unit failed", fields...)
	b.sink.Fail(message, ctx)
}
