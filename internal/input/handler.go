package input

import (
	"fmt"
	"sync"

	"github.com/tlinford/zellij/internal/config"
	"github.com/tlinford/zellij/internal/ipc"
)

// Handler tracks the input mode and maps keys to actions.
type Handler struct {
	mode Mode
	mu   sync.RWMutex

	quit        config.Key
	commandMode config.Key
	normalMode  config.Key
	commands    map[config.Key]ipc.ActionKind
}

// NewHandler creates a handler in normal mode for the given bindings.
// Empty bindings are disabled.
func NewHandler(keys config.KeyBindings) (*Handler, error) {
	h := &Handler{
		mode:     ModeNormal,
		commands: make(map[config.Key]ipc.ActionKind),
	}

	parse := func(name, s string, dst *config.Key) error {
		if s == "" {
			return nil
		}
		key, err := config.ParseKey(s)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = key
		return nil
	}
	if err := parse("quit", keys.Quit, &h.quit); err != nil {
		return nil, err
	}
	if err := parse("command_mode", keys.CommandMode, &h.commandMode); err != nil {
		return nil, err
	}
	if err := parse("normal_mode", keys.NormalMode, &h.normalMode); err != nil {
		return nil, err
	}

	commands := []struct {
		name string
		key  string
		kind ipc.ActionKind
	}{
		{"new_pane", keys.NewPane, ipc.ActionNewPane},
		{"close_focus", keys.CloseFocus, ipc.ActionCloseFocus},
		{"focus_next_pane", keys.FocusNextPane, ipc.ActionFocusNextPane},
		{"toggle_fullscreen", keys.ToggleFullscreen, ipc.ActionToggleFullscreen},
		{"scroll_up", keys.ScrollUp, ipc.ActionScrollUp},
		{"scroll_down", keys.ScrollDown, ipc.ActionScrollDown},
		{"new_tab", keys.NewTab, ipc.ActionNewTab},
		{"go_to_next_tab", keys.GoToNextTab, ipc.ActionGoToNextTab},
	}
	for _, c := range commands {
		var key config.Key
		if err := parse(c.name, c.key, &key); err != nil {
			return nil, err
		}
		if key.Value != nil {
			h.commands[key] = c.kind
		}
	}

	return h, nil
}

// Mode returns the current input mode.
func (h *Handler) Mode() Mode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mode
}

// Handle returns the action for key, if any. The quit binding works in both
// modes. In command mode any bound command or the normal mode key returns
// to normal mode; other keys are ignored.
func (h *Handler) Handle(key Key) (ipc.Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if key.Known() && key.Key == h.quit {
		return ipc.Action{Kind: ipc.ActionQuit}, true
	}

	switch h.mode {
	case ModeCommand:
		if key.Known() && key.Key == h.normalMode {
			h.mode = ModeNormal
			return ipc.Action{}, false
		}
		kind, ok := h.commands[key.Key]
		if !ok || !key.Known() {
			return ipc.Action{}, false
		}
		h.mode = ModeNormal
		return ipc.Action{Kind: kind}, true

	default:
		if key.Known() && key.Key == h.commandMode {
			h.mode = ModeCommand
			return ipc.Action{}, false
		}
		return ipc.Action{Kind: ipc.ActionWrite, Bytes: key.Raw}, true
	}
}
