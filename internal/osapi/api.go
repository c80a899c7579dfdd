// Package osapi is the client's view of the operating system: the terminal,
// standard input and output, signals and the server connection.
//
// The orchestrator holds a ClientAPI. Satellite units only ever receive a
// SatelliteAPI, which has no access to stdout or the terminal mode.
package osapi

import (
	"errors"
	"io"

	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/ipc"
)

// ErrServerGone is returned by RecvFromServer once the server connection has
// been closed by either side.
var ErrServerGone = errors.New("server connection closed")

// StdoutWriter buffers terminal output until Flush.
type StdoutWriter interface {
	io.Writer
	Flush() error
}

// SatelliteAPI is the capability set shared by the satellite units. All
// methods are safe for concurrent use.
type SatelliteAPI interface {
	// SendToServer writes one instruction to the server.
	SendToServer(instruction ipc.ServerInstruction) error
	// RecvFromServer blocks for the next client-bound instruction.
	RecvFromServer() (ipc.ClientInstruction, errctx.Context, error)
	// TerminalSize returns the size of the terminal behind fd.
	TerminalSize(fd uintptr) ipc.TerminalSize
	// ReadStdin blocks until input is available. It returns io.EOF once
	// stdin is closed.
	ReadStdin() ([]byte, error)
	// ReceiveResize calls fn for each terminal resize notification. It only
	// returns when fn fails.
	ReceiveResize(fn func() error) error
}

// ClientAPI adds the operations reserved to the orchestrator.
type ClientAPI interface {
	SatelliteAPI

	// ConnectToServer opens the server connection.
	ConnectToServer() error
	// SetRawMode puts the terminal behind fd into raw mode.
	SetRawMode(fd uintptr) error
	// UnsetRawMode restores the terminal behind fd to the mode it had when
	// the API was created.
	UnsetRawMode(fd uintptr) error
	// Stdout returns a fresh buffered writer on standard output.
	Stdout() StdoutWriter
	// Satellite returns a view of the API limited to SatelliteAPI.
	Satellite() SatelliteAPI
}

// Restrict wraps api so that the result cannot be asserted back to a
// ClientAPI.
func Restrict(api SatelliteAPI) SatelliteAPI {
	if s, ok := api.(satellite); ok {
		return s
	}
	return satellite{api: api}
}

type satellite struct {
	api SatelliteAPI
}

func (s satellite) SendToServer(instruction ipc.ServerInstruction) error {
	return s.api.SendToServer(instruction)
}

func (s satellite) RecvFromServer() (ipc.ClientInstruction, errctx.Context, error) {
	return s.api.RecvFromServer()
}

func (s satellite) TerminalSize(fd uintptr) ipc.TerminalSize {
	return s.api.TerminalSize(fd)
}

func (s satellite) ReadStdin() ([]byte, error) {
	return s.api.ReadStdin()
}

func (s satellite) ReceiveResize(fn func() error) error {
	return s.api.ReceiveResize(fn)
}
