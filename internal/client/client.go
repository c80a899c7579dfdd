// Package client runs a zellij client session: it takes over the user's
// terminal, relays between the user and the server, and hands the terminal
// back in a usable state however the session ends.
//
// Start owns everything visible on the terminal. The input reader, the
// signal listener and the router run as separate units and reach the
// orchestrator only through the instruction channel.
package client

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"go.uber.org/zap"

	"github.com/tlinford/zellij/internal/channel"
	"github.com/tlinford/zellij/internal/cli"
	"github.com/tlinford/zellij/internal/config"
	"github.com/tlinford/zellij/internal/errctx"
	"github.com/tlinford/zellij/internal/gate"
	"github.com/tlinford/zellij/internal/input"
	"github.com/tlinford/zellij/internal/ipc"
	"github.com/tlinford/zellij/internal/osapi"
	"github.com/tlinford/zellij/internal/panicbridge"
	"github.com/tlinford/zellij/internal/screen"
)

// Process exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

type options struct {
	logger   *zap.Logger
	stderr   io.Writer
	gate     *gate.Gate
	capacity int
	shadow   *screen.Shadow
}

// Option configures Start.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStderr sets where configuration errors are printed.
func WithStderr(w io.Writer) Option {
	return func(o *options) { o.stderr = w }
}

// WithGate shares g with the input reader instead of a fresh gate.
func WithGate(g *gate.Gate) Option {
	return func(o *options) { o.gate = g }
}

// WithCapacity sets the instruction channel capacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithShadowScreen mirrors everything written to the terminal into s.
// With --debug a shadow screen is created when none is given.
func WithShadowScreen(s *screen.Shadow) Option {
	return func(o *options) { o.shadow = s }
}

type client struct {
	api    osapi.ClientAPI
	logger *zap.Logger
	size   ipc.TerminalSize
	shadow *screen.Shadow
}

// Start runs a session to completion and returns the process exit code.
func Start(api osapi.ClientAPI, args cli.Args, opts ...Option) (code int) {
	o := options{
		logger:   zap.NewNop(),
		stderr:   os.Stderr,
		capacity: channel.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Configuration problems are reported before the terminal is touched
	cfg, err := config.FromCLI(args.Config)
	if err != nil {
		fmt.Fprintf(o.stderr, "There was an error in the config file:\n%v\n", err)
		return ExitError
	}

	logger := o.logger
	c := &client{api: api, logger: logger, shadow: o.shadow}

	if err := api.UnsetRawMode(osapi.Stdin); err != nil {
		logger.Warn("unset raw mode", zap.Error(err))
	}
	if err := c.write(enterAlternateScreen); err != nil {
		logger.Warn("enter alternate screen", zap.Error(err))
	}

	// From here on a panic on this goroutine still hands the terminal back
	defer func() {
		if r := recover(); r != nil {
			cause := errors.Wrap(r, 2)
			code = c.fail(fmt.Sprintf("client panicked: %v\n\n%s", r, cause.Stack()))
		}
	}()

	g := o.gate
	if g == nil {
		g = gate.New()
	}

	c.size = api.TerminalSize(osapi.Stdin)
	if c.shadow == nil && args.Debug {
		c.shadow = screen.New(c.size)
		c.shadow.Write([]byte(enterAlternateScreen))
	}
	logger.Debug("starting client",
		zap.Int("rows", c.size.Rows),
		zap.Int("cols", c.size.Cols),
		zap.Int("max_panes", args.MaxPanes),
		zap.String("layout", args.Layout),
	)

	sender, receiver := channel.New[ipc.ClientInstruction](o.capacity)
	bridge := panicbridge.New(panicbridge.NewChannelSink(sender), logger)

	if err := api.ConnectToServer(); err != nil {
		return c.fail(fmt.Sprintf("failed to connect to server: %v", err))
	}
	if err := api.SendToServer(ipc.NewClient(c.size)); err != nil {
		return c.fail(fmt.Sprintf("failed to register with server: %v", err))
	}
	if err := api.SetRawMode(osapi.Stdin); err != nil {
		return c.fail(err.Error())
	}

	satellite := api.Satellite()
	bridge.Go(input.UnitName, func(*panicbridge.Handle) error {
		return input.Loop(satellite, cfg, g, sender, logger)
	})
	bridge.Go(signalUnit, func(*panicbridge.Handle) error {
		return listenSignals(satellite, c.shadow, logger)
	})
	router := bridge.Go(routerUnit, func(h *panicbridge.Handle) error {
		return route(satellite, sender, h, logger)
	})

	if message, failed := c.run(receiver, g); failed {
		return c.fail(message)
	}

	// Normal shutdown
	if err := api.SendToServer(ipc.ClientExitInstruction()); err != nil {
		logger.Warn("notify server of exit", zap.Error(err))
	}
	// Keep the channel moving so the router's last sends complete
	if n := receiver.Drain(router.Done()); n > 0 {
		logger.Debug("discarded instructions after exit", zap.String("unit", router.Name()), zap.Int("count", n))
	}
	receiver.Close()

	if err := api.UnsetRawMode(osapi.Stdin); err != nil {
		logger.Warn("unset raw mode", zap.Error(err))
	}
	if err := c.write(restoreSequence(c.size) + goodbyeMessage); err != nil {
		logger.Warn("restore terminal", zap.Error(err))
	}
	c.logShadow()
	return ExitOK
}

// run consumes instructions until one ends the session. It reports whether
// the session ended with an error, and the error's message.
func (c *client) run(receiver *channel.Receiver[ipc.ClientInstruction], g *gate.Gate) (string, bool) {
	for {
		envelope := receiver.Recv()
		instruction := envelope.Instruction
		ctx := envelope.Context.AddCall(errctx.Client(instruction.Kind.String()))

		c.logger.Debug("instruction",
			zap.Stringer("instruction", instruction),
			zap.Stringer("context", ctx),
		)

		switch instruction.Kind {
		case ipc.ClientRender:
			if instruction.Output != nil {
				if err := c.write(*instruction.Output); err != nil {
					return fmt.Sprintf("failed to write to stdout: %v\n\n%s", err, ctx), true
				}
			}
		case ipc.ClientUnblockInputThread:
			g.Unblock()
		case ipc.ClientError, ipc.ClientExit:
		default:
			c.logger.Warn("ignoring unknown instruction", zap.Stringer("instruction", instruction))
		}

		if instruction.Terminal() {
			c.logger.Debug("session ending",
				zap.Stringer("instruction", instruction),
				zap.Int("pending", receiver.Len()),
			)
			return instruction.Message, instruction.Kind == ipc.ClientError
		}
	}
}

// fail is the error path: tell the server, restore the terminal and print
// message on the last row.
func (c *client) fail(message string) int {
	c.logger.Error("client error", zap.String("error", message))

	if err := c.api.SendToServer(ipc.ClientExitInstruction()); err != nil {
		c.logger.Debug("notify server of exit", zap.Error(err))
	}
	if err := c.api.UnsetRawMode(osapi.Stdin); err != nil {
		c.logger.Warn("unset raw mode", zap.Error(err))
	}

	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	if err := c.write(restoreSequence(c.size) + message); err != nil {
		c.logger.Warn("restore terminal", zap.Error(err))
	}
	c.logShadow()
	return ExitError
}

// write sends s to stdout in one flush.
func (c *client) write(s string) error {
	w := c.api.Stdout()
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if c.shadow != nil {
		if _, err := c.shadow.Write([]byte(s)); err != nil {
			c.logger.Debug("shadow screen", zap.Error(err))
		}
	}
	return nil
}

func (c *client) logShadow() {
	if c.shadow == nil {
		return
	}
	x, y := c.shadow.Cursor()
	size := c.shadow.Size()
	c.logger.Debug("final screen",
		zap.String("screen", c.shadow.Snapshot()),
		zap.Int("rows", size.Rows),
		zap.Int("cols", size.Cols),
		zap.Int("cursor_x", x),
		zap.Int("cursor_y", y),
		zap.Bool("cursor_visible", c.shadow.CursorVisible()),
	)
}
