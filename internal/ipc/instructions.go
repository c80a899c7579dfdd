// Package ipc defines the instructions exchanged between the client and the
// server and their wire encoding on the server connection.
package ipc

import "fmt"

// TerminalSize is a terminal's dimensions in character cells.
type TerminalSize struct {
	Rows int `cbor:"rows"`
	Cols int `cbor:"cols"`
}

// ClientInstructionKind enumerates the instructions the orchestrator consumes.
type ClientInstructionKind uint8

const (
	// ClientError reports an unrecoverable failure; Message holds the trace.
	ClientError ClientInstructionKind = iota + 1
	// ClientRender carries output to write verbatim, or no output when the
	// session ended normally.
	ClientRender
	// ClientUnblockInputThread releases the input gate.
	ClientUnblockInputThread
	// ClientExit ends the session.
	ClientExit
)

// String returns the variant name.
func (k ClientInstructionKind) String() string {
	switch k {
	case ClientError:
		return "Error"
	case ClientRender:
		return "Render"
	case ClientUnblockInputThread:
		return "UnblockInputThread"
	case ClientExit:
		return "Exit"
	default:
		return fmt.Sprintf("ClientInstructionKind(%d)", uint8(k))
	}
}

// ClientInstruction is a client-bound instruction.
type ClientInstruction struct {
	Kind    ClientInstructionKind `cbor:"kind"`
	Message string                `cbor:"message,omitempty"`
	// Output is nil for Render(None).
	Output *string `cbor:"output,omitempty"`
}

// Error builds Error(message).
func Error(message string) ClientInstruction {
	return ClientInstruction{Kind: ClientError, Message: message}
}

// Render builds Render(Some(output)).
func Render(output string) ClientInstruction {
	return ClientInstruction{Kind: ClientRender, Output: &output}
}

// RenderNone builds Render(None).
func RenderNone() ClientInstruction {
	return ClientInstruction{Kind: ClientRender}
}

// UnblockInputThread builds UnblockInputThread.
func UnblockInputThread() ClientInstruction {
	return ClientInstruction{Kind: ClientUnblockInputThread}
}

// Exit builds Exit.
func Exit() ClientInstruction {
	return ClientInstruction{Kind: ClientExit}
}

// Terminal reports whether the orchestrator stops after consuming i.
func (i ClientInstruction) Terminal() bool {
	switch i.Kind {
	case ClientError, ClientExit:
		return true
	case ClientRender:
		return i.Output == nil
	default:
		return false
	}
}

// String is meant for logs and never includes rendered output.
func (i ClientInstruction) String() string {
	switch i.Kind {
	case ClientRender:
		if i.Output == nil {
			return "Render(None)"
		}
		return fmt.Sprintf("Render(%d bytes)", len(*i.Output))
	case ClientError:
		return fmt.Sprintf("Error(%q)", i.Message)
	default:
		return i.Kind.String()
	}
}

// ServerInstructionKind enumerates what the client sends to the server.
type ServerInstructionKind uint8

const (
	// ServerNewClient announces a client and its terminal size.
	ServerNewClient ServerInstructionKind = iota + 1
	// ServerTerminalResize reports a new terminal size.
	ServerTerminalResize
	// ServerClientExit tells the server this client is leaving.
	ServerClientExit
	// ServerAction carries a command derived from user input.
	ServerAction
)

// String returns the variant name.
func (k ServerInstructionKind) String() string {
	switch k {
	case ServerNewClient:
		return "NewClient"
	case ServerTerminalResize:
		return "TerminalResize"
	case ServerClientExit:
		return "ClientExit"
	case ServerAction:
		return "Action"
	default:
		return fmt.Sprintf("ServerInstructionKind(%d)", uint8(k))
	}
}

// ServerInstruction is a server-bound instruction.
type ServerInstruction struct {
	Kind   ServerInstructionKind `cbor:"kind"`
	Size   TerminalSize          `cbor:"size,omitempty"`
	Action *Action               `cbor:"action,omitempty"`
}

// NewClient builds NewClient(size).
func NewClient(size TerminalSize) ServerInstruction {
	return ServerInstruction{Kind: ServerNewClient, Size: size}
}

// TerminalResize builds TerminalResize(size).
func TerminalResize(size TerminalSize) ServerInstruction {
	return ServerInstruction{Kind: ServerTerminalResize, Size: size}
}

// ClientExitInstruction builds ClientExit.
func ClientExitInstruction() ServerInstruction {
	return ServerInstruction{Kind: ServerClientExit}
}

// ActionInstruction wraps an input-derived action.
func ActionInstruction(action Action) ServerInstruction {
	return ServerInstruction{Kind: ServerAction, Action: &action}
}

// String is meant for logs.
func (i ServerInstruction) String() string {
	switch i.Kind {
	case ServerNewClient, ServerTerminalResize:
		return fmt.Sprintf("%s(%dx%d)", i.Kind, i.Size.Rows, i.Size.Cols)
	case ServerAction:
		if i.Action != nil {
			return fmt.Sprintf("Action(%s)", i.Action.Kind)
		}
	}
	return i.Kind.String()
}

// ActionKind enumerates commands the input reader derives from keys.
type ActionKind uint8

const (
	// ActionWrite forwards raw input bytes to the focused pane.
	ActionWrite ActionKind = iota + 1
	ActionNewPane
	ActionCloseFocus
	ActionFocusNextPane
	ActionToggleFullscreen
	ActionScrollUp
	ActionScrollDown
	ActionNewTab
	ActionGoToNextTab
	// ActionQuit is handled by the client and never sent.
	ActionQuit
)

var actionNames = map[ActionKind]string{
	ActionWrite:            "Write",
	ActionNewPane:          "NewPane",
	ActionCloseFocus:       "CloseFocus",
	ActionFocusNextPane:    "FocusNextPane",
	ActionToggleFullscreen: "ToggleFullscreen",
	ActionScrollUp:         "ScrollUp",
	ActionScrollDown:       "ScrollDown",
	ActionNewTab:           "NewTab",
	ActionGoToNextTab:      "GoToNextTab",
	ActionQuit:             "Quit",
}

// String returns the action name.
func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action is a user command.
type Action struct {
	Kind  ActionKind `cbor:"kind"`
	Bytes []byte     `cbor:"bytes,omitempty"`
}
