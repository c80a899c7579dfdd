package osapi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/ipc"
)

// DefaultSize is used when no terminal size can be determined.
var DefaultSize = ipc.TerminalSize{Rows: 24, Cols: 80}

// Stdin and Stdout name the configured standard streams in fd arguments,
// whatever descriptors they actually use.
const (
	Stdin  uintptr = 0
	Stdout uintptr = 1
)

const stdinBufferSize = 4096

// Options configures a Unix API.
type Options struct {
	// Socket is the server's unix socket path.
	Socket string
	// ConnectTimeout bounds the wait for Socket to appear.
	ConnectTimeout time.Duration
	// Stdin and Stdout default to os.Stdin and os.Stdout.
	Stdin  *os.File
	Stdout *os.File
	Logger *zap.Logger
}

// Unix implements ClientAPI on a unix host.
type Unix struct {
	opts   Options
	stdin  *os.File
	stdout *os.File
	logger *zap.Logger

	// original terminal states by fd, captured on construction
	states map[uintptr]*term.State

	mu     sync.Mutex // guards conn and reader
	conn   net.Conn
	reader *bufio.Reader

	sendMu sync.Mutex
	recvMu sync.Mutex
}

// NewUnix creates the API and records the current mode of every terminal
// among stdin and stdout so UnsetRawMode can return to it.
func NewUnix(opts Options) *Unix {
	u := &Unix{
		opts:   opts,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
		logger: opts.Logger,
		states: make(map[uintptr]*term.State),
	}
	if u.stdin == nil {
		u.stdin = os.Stdin
	}
	if u.stdout == nil {
		u.stdout = os.Stdout
	}
	if u.logger == nil {
		u.logger = zap.NewNop()
	}

	for _, f := range []*os.File{u.stdin, u.stdout} {
		fd := f.Fd()
		if !term.IsTerminal(int(fd)) {
			continue
		}
		if state, err := term.GetState(int(fd)); err == nil {
			u.states[fd] = state
		}
	}
	return u
}

// Satellite returns the restricted view of u.
func (u *Unix) Satellite() SatelliteAPI {
	return Restrict(u)
}

// SetRawMode puts fd into raw mode. Descriptors that are not terminals are
// left alone.
func (u *Unix) SetRawMode(fd uintptr) error {
	fd, _ = u.resolve(fd)
	if !term.IsTerminal(int(fd)) {
		return nil
	}
	if _, err := term.MakeRaw(int(fd)); err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	return nil
}

// UnsetRawMode restores fd to its mode at construction.
func (u *Unix) UnsetRawMode(fd uintptr) error {
	fd, _ = u.resolve(fd)
	state, ok := u.states[fd]
	if !ok {
		return nil
	}
	if err := term.Restore(int(fd), state); err != nil {
		return fmt.Errorf("unset raw mode: %w", err)
	}
	return nil
}

// TerminalSize returns the size of the terminal behind fd, falling back to
// DefaultSize.
func (u *Unix) TerminalSize(fd uintptr) ipc.TerminalSize {
	fd, f := u.resolve(fd)
	if f != nil {
		if ws, err := pty.GetsizeFull(f); err == nil && ws.Rows > 0 && ws.Cols > 0 {
			return ipc.TerminalSize{Rows: int(ws.Rows), Cols: int(ws.Cols)}
		}
	}
	if cols, rows, err := term.GetSize(int(fd)); err == nil && rows > 0 && cols > 0 {
		return ipc.TerminalSize{Rows: rows, Cols: cols}
	}
	return DefaultSize
}

// resolve maps Stdin and Stdout to the configured files and returns the
// file behind fd when it is one of them.
func (u *Unix) resolve(fd uintptr) (uintptr, *os.File) {
	switch fd {
	case Stdin, u.stdin.Fd():
		return u.stdin.Fd(), u.stdin
	case Stdout, u.stdout.Fd():
		return u.stdout.Fd(), u.stdout
	default:
		return fd, nil
	}
}

// Stdout returns a buffered writer on stdout.
func (u *Unix) Stdout() StdoutWriter {
	return bufio.NewWriter(u.stdout)
}

// ReadStdin reads whatever input is available.
func (u *Unix) ReadStdin() ([]byte, error) {
	buf := make([]byte, stdinBufferSize)
	n, err := u.stdin.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// ReceiveResize calls fn on every SIGWINCH.
func (u *Unix) ReceiveResize(fn func() error) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGWINCH)
	defer signal.Stop(signals)

	for range signals {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// ConnectToServer waits up to ConnectTimeout for the socket to exist and
// dials it.
func (u *Unix) ConnectToServer() error {
	timeout := u.opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if err := waitForSocket(u.opts.Socket, timeout); err != nil {
		return err
	}

	conn, err := net.DialTimeout("unix", u.opts.Socket, timeout)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	u.mu.Lock()
	u.conn = conn
	u.reader = bufio.NewReader(conn)
	u.mu.Unlock()

	u.logger.Debug("connected to server", zap.String("socket", u.opts.Socket))
	return nil
}

// Close closes the server connection.
func (u *Unix) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	return u.conn.Close()
}

func (u *Unix) connection() (net.Conn, *bufio.Reader, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil, nil, fmt.Errorf("not connected to server")
	}
	return u.conn, u.reader, nil
}

// SendToServer writes instruction to the server. Concurrent sends never
// interleave their frames.
func (u *Unix) SendToServer(instruction ipc.ServerInstruction) error {
	conn, _, err := u.connection()
	if err != nil {
		return err
	}

	ctx := errctx.New().AddCall(errctx.Client("SendToServer"))

	u.sendMu.Lock()
	defer u.sendMu.Unlock()
	if err := ipc.WriteServerInstruction(conn, instruction, ctx); err != nil {
		return fmt.Errorf("send %s: %w", instruction, err)
	}
	return nil
}

// RecvFromServer reads the next instruction from the server.
func (u *Unix) RecvFromServer() (ipc.ClientInstruction, errctx.Context, error) {
	_, reader, err := u.connection()
	if err != nil {
		return ipc.ClientInstruction{}, errctx.Context{}, err
	}

	u.recvMu.Lock()
	defer u.recvMu.Unlock()
	instruction, ctx, err := ipc.ReadClientInstruction(reader)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return ipc.ClientInstruction{}, errctx.Context{}, ErrServerGone
		}
		return ipc.ClientInstruction{}, errctx.Context{}, err
	}
	return instruction, ctx, nil
}

// waitForSocket returns once path exists. The server creates the socket's
// directory before the socket, so only the directory is watched.
func waitForSocket(path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch for server socket: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch for server socket in %s: %w", dir, err)
	}

	// The socket may have appeared before the watch was added
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watch for server socket: watcher closed")
			}
			if event.Op&fsnotify.Create != 0 && filepath.Clean(event.Name) == filepath.Clean(path) {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watch for server socket: watcher closed")
			}
			return fmt.Errorf("watch for server socket: %w", err)

		case <-timer.C:
			return fmt.Errorf("server socket %s did not appear within %s", path, timeout)
		}
	}
}
