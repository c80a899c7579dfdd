// Package screen keeps a shadow copy of what the client has drawn on the
// user's terminal, for debugging.
package screen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vito/midterm"

	"github.com/tlinford/zellij/internal/ipc"
)

// Shadow emulates the user's terminal from the bytes written to it. All
// access goes through the mutex.
//
// If the emulator panics the shadow disables itself: later writes return
// the same error and the readers report an empty screen.
type Shadow struct {
	term   *midterm.Terminal
	mu     sync.Mutex
	failed error
}

// New creates a shadow screen of the given size.
func New(size ipc.TerminalSize) *Shadow {
	return &Shadow{
		term: midterm.NewTerminal(size.Rows, size.Cols),
	}
}

// disable must be deferred with s.mu held.
func (s *Shadow) disable(err *error) {
	if r := recover(); r != nil {
		s.failed = fmt.Errorf("shadow screen disabled: %v", r)
		if err != nil {
			*err = s.failed
		}
	}
}

// Write feeds output to the emulator.
func (s *Shadow) Write(data []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return 0, s.failed
	}
	defer s.disable(&err)
	return s.term.Write(data)
}

// Resize changes the emulated dimensions.
func (s *Shadow) Resize(size ipc.TerminalSize) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return s.failed
	}
	defer s.disable(&err)
	s.term.Resize(size.Rows, size.Cols)
	return nil
}

// Snapshot renders the current screen contents.
func (s *Shadow) Snapshot() (out string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return ""
	}
	defer s.disable(nil)

	if s.term.Height <= 0 || s.term.Width <= 0 {
		return ""
	}
	var b strings.Builder
	if err := s.term.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// Cursor returns the current cursor position.
func (s *Shadow) Cursor() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return 0, 0
	}
	return s.term.Cursor.X, s.term.Cursor.Y
}

// Size returns the emulated dimensions.
func (s *Shadow) Size() ipc.TerminalSize {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return ipc.TerminalSize{}
	}
	return ipc.TerminalSize{Rows: s.term.Height, Cols: s.term.Width}
}

// CursorVisible reports whether the last output left the cursor shown.
func (s *Shadow) CursorVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return false
	}
	return s.term.CursorVisible
}
