// Package channel provides the bounded, ordered instruction channel that
// carries client-bound instructions to the orchestrator.
//
// Any number of goroutines may send; exactly one receives. Send blocks while
// the channel is full, so nothing is ever dropped, and Recv blocks while it
// is empty. Instructions from one sender arrive in the order they were sent;
// there is no ordering between different senders.
package channel

import (
	"errors"
	"sync"

	"github.com/tlinford/zellij/internal/errctx"
)

// DefaultCapacity is the number of instructions the client channel buffers.
const DefaultCapacity = 500

// ErrReceiverGone is the panic value of a Send issued after the receiver was
// closed. Sending to a finished orchestrator is a lifecycle bug.
var ErrReceiverGone = errors.New("channel: send after receiver closed")

// Envelope is one instruction together with its diagnostic trail.
type Envelope[T any] struct {
	Instruction T
	Context     errctx.Context
}

// Sender is the send half. It is safe for concurrent use and may be shared
// freely.
type Sender[T any] struct {
	ch   chan Envelope[T]
	done <-chan struct{}
}

// Receiver is the receive half. It must have exactly one owner.
type Receiver[T any] struct {
	ch   chan Envelope[T]
	done chan struct{}
	once sync.Once
}

// New creates a channel buffering up to capacity instructions.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	ch := make(chan Envelope[T], capacity)
	done := make(chan struct{})
	return &Sender[T]{ch: ch, done: done}, &Receiver[T]{ch: ch, done: done}
}

// Send queues instruction with ctx, blocking while the channel is full.
// It panics with ErrReceiverGone if the receiver has been closed, including
// while the call is blocked.
func (s *Sender[T]) Send(instruction T, ctx errctx.Context) {
	select {
	case <-s.done:
		panic(ErrReceiverGone)
	default:
	}

	select {
	case s.ch <- Envelope[T]{Instruction: instruction, Context: ctx}:
	case <-s.done:
		panic(ErrReceiverGone)
	}
}

// Recv returns the oldest queued instruction, blocking until one exists.
func (r *Receiver[T]) Recv() Envelope[T] {
	return <-r.ch
}

// Len returns the number of queued instructions.
func (r *Receiver[T]) Len() int {
	return len(r.ch)
}

// Close marks the receiver as gone. Blocked and future sends panic.
func (r *Receiver[T]) Close() {
	r.once.Do(func() { close(r.done) })
}

// Drain discards queued and newly sent instructions until until is closed,
// so senders blocked on a full channel can finish. It returns the number of
// instructions discarded.
func (r *Receiver[T]) Drain(until <-chan struct{}) int {
	n := 0
	for {
		select {
		case <-r.ch:
			n++
		case <-until:
			return n
		}
	}
}
