package client

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tlinford/zellij/internal/channel"
	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/ipc"
	"github.com/tlinford/zellij/internal/osapi"
	"github.com/tlinford/zellij/internal/screen"
)

// Unit names, as they appear in diagnostics.
const (
	routerUnit = "router"
	signalUnit = "signal_listener"
)

// recorder keeps the trail a unit is handling for failure reports.
type recorder interface {
	Record(ctx errctx.Context)
}

// route is the only reader of the server connection. It republishes every
// message on the instruction channel. When the server sends Exit or the
// connection closes, it sends one more Exit of its own and returns.
func route(api osapi.SatelliteAPI, sender *channel.Sender[ipc.ClientInstruction], trail recorder, logger *zap.Logger) error {
	logger = logger.With(zap.String("unit", routerUnit))

	for {
		instruction, ctx, err := api.RecvFromServer()
		if err != nil {
			if errors.Is(err, osapi.ErrServerGone) {
				logger.Debug("server connection closed")
				break
			}
			return fmt.Errorf("receive from server: %w", err)
		}

		ctx = ctx.AddCall(errctx.Client(instruction.Kind.String()))
		trail.Record(ctx)
		sender.Send(instruction, ctx)

		if instruction.Kind == ipc.ClientExit {
			logger.Debug("server sent exit")
			break
		}
	}

	ctx := errctx.New().AddCall(errctx.Thread(routerUnit)).AddCall(errctx.Client(ipc.ClientExit.String()))
	sender.Send(ipc.Exit(), ctx)
	return nil
}

// listenSignals forwards every terminal resize to the server and keeps the
// shadow screen, if any, at the new size. It only returns if sending fails.
func listenSignals(api osapi.SatelliteAPI, shadow *screen.Shadow, logger *zap.Logger) error {
	logger = logger.With(zap.String("unit", signalUnit))

	return api.ReceiveResize(func() error {
		size := api.TerminalSize(osapi.Stdin)
		logger.Debug("terminal resized", zap.Int("rows", size.Rows), zap.Int("cols", size.Cols))
		if shadow != nil {
			if err := shadow.Resize(size); err != nil {
				logger.Debug("shadow screen", zap.Error(err))
			}
		}
		return api.SendToServer(ipc.TerminalResize(size))
	})
}
