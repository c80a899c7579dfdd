package input

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tlinford/zellij/internal/channel"
	"github.com/tlinford/zellij/internal/config"
	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/gate"
	"github.com/tlinford/zellij/internal/ipc"
	"github.com/tlinford/zellij/internal/osapi"
)

// UnitName identifies the input reader in diagnostics.
const UnitName = "stdin_handler"

// Loop reads stdin until it closes or the user quits. Every server-bound
// action blocks g until the orchestrator releases it, so at most one command
// is unacknowledged. Quit sends Exit to the orchestrator.
func Loop(api osapi.SatelliteAPI, cfg *config.Config, g *gate.Gate, sender *channel.Sender[ipc.ClientInstruction], logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("unit", UnitName))

	handler, err := NewHandler(cfg.Keys)
	if err != nil {
		return fmt.Errorf("keybindings: %w", err)
	}

	send := func(action ipc.Action) error {
		g.Block()
		if err := api.SendToServer(ipc.ActionInstruction(action)); err != nil {
			return err
		}
		g.WaitUntilUnblocked()
		return nil
	}

	for {
		data, err := api.ReadStdin()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("stdin closed")
				return nil
			}
			return fmt.Errorf("read stdin: %w", err)
		}

		// Consecutive writes from one read go out as one action
		var pending []byte
		flush := func() error {
			if len(pending) == 0 {
				return nil
			}
			action := ipc.Action{Kind: ipc.ActionWrite, Bytes: pending}
			pending = nil
			return send(action)
		}

		for _, key := range Decode(data) {
			action, ok := handler.Handle(key)
			if !ok {
				continue
			}
			if action.Kind == ipc.ActionWrite {
				pending = append(pending, action.Bytes...)
				continue
			}
			if err := flush(); err != nil {
				return err
			}

			if action.Kind == ipc.ActionQuit {
				logger.Debug("quit requested")
				ctx := errctx.New().AddCall(errctx.Thread(UnitName)).AddCall(errctx.Client("Quit"))
				sender.Send(ipc.Exit(), ctx)
				return nil
			}

			logger.Debug("sending action", zap.Stringer("action", action.Kind), zap.Stringer("mode", handler.Mode()))
			if err := send(action); err != nil {
				return err
			}
		}
		if err := flush(); err != nil {
			return err
		}
	}
}
