package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/ipc"
	"github.com/tlinford/zellij/internal/osapi"
)

var (
	testSize    = ipc.TerminalSize{Rows: 24, Cols: 80}
	resizedSize = ipc.TerminalSize{Rows: 40, Cols: 120}
)

// fakeOS is an in-memory ClientAPI. The server side is a queue of scripted
// instructions; like a real server it closes the connection once the client
// sends ClientExit.
type fakeOS struct {
	mu     sync.Mutex
	events []string
	sent   []ipc.ServerInstruction
	writes []string

	inbound   chan ipc.ClientInstruction
	closeOnce sync.Once
	stdin     chan []byte
	resize    chan struct{}

	sizeCalls int

	connectErr error
	recvPanic  any
	writeErr   error
	// flushPanic makes Flush panic when the buffered output contains it
	flushPanic string
}

func newFakeOS(t *testing.T, script ...ipc.ClientInstruction) *fakeOS {
	f := &fakeOS{
		inbound: make(chan ipc.ClientInstruction, len(script)+1),
		stdin:   make(chan []byte),
		resize:  make(chan struct{}),
	}
	for _, instruction := range script {
		f.inbound <- instruction
	}
	t.Cleanup(func() { close(f.stdin) })
	return f
}

func (f *fakeOS) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// closeServer ends the connection from the server side.
func (f *fakeOS) closeServer() {
	f.closeOnce.Do(func() { close(f.inbound) })
}

func (f *fakeOS) ConnectToServer() error {
	f.record("connect")
	return f.connectErr
}

func (f *fakeOS) SendToServer(instruction ipc.ServerInstruction) error {
	f.mu.Lock()
	f.sent = append(f.sent, instruction)
	f.events = append(f.events, "send "+instruction.Kind.String())
	connected := f.connectErr == nil
	f.mu.Unlock()

	if !connected {
		return errors.New("not connected")
	}
	if instruction.Kind == ipc.ServerClientExit {
		f.closeServer()
	}
	return nil
}

func (f *fakeOS) RecvFromServer() (ipc.ClientInstruction, errctx.Context, error) {
	if f.recvPanic != nil {
		panic(f.recvPanic)
	}
	instruction, ok := <-f.inbound
	if !ok {
		return ipc.ClientInstruction{}, errctx.Context{}, osapi.ErrServerGone
	}
	return instruction, errctx.New().AddCall(errctx.Server(instruction.Kind.String())), nil
}

// TerminalSize reports testSize at startup and resizedSize after that, as if
// the user resized the window once the session began.
func (f *fakeOS) TerminalSize(uintptr) ipc.TerminalSize {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizeCalls++
	if f.sizeCalls == 1 {
		return testSize
	}
	return resizedSize
}

func (f *fakeOS) ReadStdin() ([]byte, error) {
	data, ok := <-f.stdin
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (f *fakeOS) ReceiveResize(fn func() error) error {
	for range f.resize {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeOS) SetRawMode(uintptr) error {
	f.record("set raw")
	return nil
}

func (f *fakeOS) UnsetRawMode(uintptr) error {
	f.record("unset raw")
	return nil
}

func (f *fakeOS) Stdout() osapi.StdoutWriter {
	return &fakeStdout{os: f}
}

func (f *fakeOS) Satellite() osapi.SatelliteAPI {
	return osapi.Restrict(f)
}

// output returns everything flushed to stdout.
func (f *fakeOS) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "")
}

func (f *fakeOS) flushes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeOS) sentKinds() []ipc.ServerInstructionKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]ipc.ServerInstructionKind, len(f.sent))
	for i, instruction := range f.sent {
		kinds[i] = instruction.Kind
	}
	return kinds
}

func (f *fakeOS) lastSent(kind ipc.ServerInstructionKind) (ipc.ServerInstruction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Kind == kind {
			return f.sent[i], true
		}
	}
	return ipc.ServerInstruction{}, false
}

func (f *fakeOS) countSent(kind ipc.ServerInstructionKind) int {
	n := 0
	for _, k := range f.sentKinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeOS) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// fakeStdout buffers until Flush, then records the flushed chunk.
type fakeStdout struct {
	os  *fakeOS
	buf bytes.Buffer
}

func (w *fakeStdout) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *fakeStdout) Flush() error {
	w.os.mu.Lock()
	defer w.os.mu.Unlock()
	if w.os.flushPanic != "" && strings.Contains(w.buf.String(), w.os.flushPanic) {
		panic("stdout driver crashed")
	}
	// Escape sequences always succeed so the restore path stays observable
	if w.os.writeErr != nil && !strings.HasPrefix(w.buf.String(), "\x1b[") {
		return w.os.writeErr
	}
	w.os.writes = append(w.os.writes, w.buf.String())
	w.os.events = append(w.os.events, fmt.Sprintf("write %q", w.buf.String()))
	w.buf.Reset()
	return nil
}
