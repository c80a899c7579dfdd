// Package main provides the entry point for the zellij client.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tlinford/zellij/internal/cli"
	"github.com/tlinford/zellij/internal/client"
	"github.com/tlinford/zellij/internal/config"
	"github.com/tlinford/zellij/internal/logging"
	"github.com/tlinford/zellij/internal/osapi"
	"github.com/tlinford/zellij/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := cli.Parse(argv)
	if cli.IsHelp(err) {
		fmt.Print(cli.Usage)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, cli.Usage)
		return 2
	}
	if args.Version {
		fmt.Println(version.String())
		return 0
	}

	// A bad environment is reported by client.Start with the other
	// configuration errors
	env, err := config.LoadEnv()
	if err != nil {
		env = config.DefaultEnv()
	}

	logger := logging.NewNop()
	if args.Debug {
		logger, err = debugLogger(env)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating debug log: %v\n", err)
			return 1
		}
	}
	defer logger.Sync()

	api := osapi.NewUnix(osapi.Options{
		Socket:         env.Socket,
		ConnectTimeout: env.ConnectTimeout,
		Logger:         logger,
	})
	defer api.Close()

	logger.Debug("zellij client", zap.String("version", version.Version), zap.String("commit", version.Short()))
	return client.Start(api, args, client.WithLogger(logger))
}

func debugLogger(env config.Env) (*zap.Logger, error) {
	cfg := &config.Config{Env: env}
	if err := cfg.EnsureLogDir(); err != nil {
		return nil, err
	}
	return logging.New(logging.DebugConfig(cfg.LogFile()))
}
