package client

import (
	"fmt"

	"github.com/tlinford/zellij/internal/ipc"
)

// Escape sequences written to the user's terminal.
const (
	enterAlternateScreen = "\x1b[?1049h"
	leaveAlternateScreen = "\x1b[?1049l"
	resetStyle           = "\x1b[m"
	showCursor           = "\x1b[?25h"
)

// goodbyeMessage is printed after a normal exit.
const goodbyeMessage = "Bye from Zellij!\n"

// gotoLastLine moves the cursor to the first column of the last row.
func gotoLastLine(size ipc.TerminalSize) string {
	return fmt.Sprintf("\x1b[%d;1H", size.Rows)
}

// restoreSequence leaves the alternate screen with the cursor on the last
// row, default style and the cursor shown.
func restoreSequence(size ipc.TerminalSize) string {
	return gotoLastLine(size) + "\n" + leaveAlternateScreen + resetStyle + showCursor
}
