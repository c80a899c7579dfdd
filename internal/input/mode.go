// Package input reads the user's keystrokes and turns them into server
// instructions.
package input

// Mode represents the current input mode.
type Mode int

const (
	// ModeNormal forwards all input to the focused pane.
	ModeNormal Mode = iota
	// ModeCommand interprets the next key as a command.
	ModeCommand
)

// String returns the human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeCommand:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// IsNormal returns true if the mode forwards input to the pane.
func (m Mode) IsNormal() bool {
	return m == ModeNormal
}

// IsCommand returns true if the mode interprets keys as commands.
func (m Mode) IsCommand() bool {
	return m == ModeCommand
}
