// Package cli parses the zellij command line.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// ErrHelp is returned by Parse when help was requested.
var ErrHelp = pflag.ErrHelp

// ConfigCli selects where configuration comes from.
type ConfigCli struct {
	// Path is the configuration file. Empty means the default location.
	Path string
	// Clean disables loading the file at the default location.
	Clean bool
}

// Args holds the parsed command line.
type Args struct {
	// MaxPanes caps the panes on screen; opening more closes old ones.
	// Zero means unlimited.
	MaxPanes int
	// Layout is a layout file path.
	Layout string
	// Config is nil unless the config subcommand was given.
	Config *ConfigCli
	// Debug enables the debug log and the shadow screen.
	Debug bool
	// Version requests the version string.
	Version bool
}

// Usage is the help text.
const Usage = `zellij - terminal workspace client

USAGE
    zellij [flags]
    zellij config [path] [--clean]

FLAGS
        --max-panes int   maximum panes on screen; opening more closes old ones
    -l, --layout path     path to a layout yaml file
    -d, --debug           write a debug log
    -V, --version         print the version
    -h, --help            show this help

SUBCOMMANDS
    config, c             path to the configuration yaml file
        --clean           disable loading of the configuration file at the default location
`

// Parse parses argv (without the program name).
func Parse(argv []string) (Args, error) {
	var args Args

	flags := newFlagSet("zellij")
	flags.IntVar(&args.MaxPanes, "max-panes", 0, "maximum panes on screen")
	flags.StringVarP(&args.Layout, "layout", "l", "", "path to a layout yaml file")
	flags.BoolVarP(&args.Debug, "debug", "d", false, "write a debug log")
	flags.BoolVarP(&args.Version, "version", "V", false, "print the version")
	flags.SetInterspersed(false)

	if err := flags.Parse(argv); err != nil {
		return Args{}, err
	}
	if args.MaxPanes < 0 {
		return Args{}, fmt.Errorf("--max-panes must not be negative, got %d", args.MaxPanes)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return args, nil
	}

	switch rest[0] {
	case "config", "c":
		config, err := parseConfig(rest[1:])
		if err != nil {
			return Args{}, err
		}
		args.Config = config
		return args, nil
	default:
		return Args{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
}

func parseConfig(argv []string) (*ConfigCli, error) {
	var config ConfigCli

	flags := newFlagSet("config")
	flags.BoolVar(&config.Clean, "clean", false, "disable loading of the configuration file at the default location")
	if err := flags.Parse(argv); err != nil {
		return nil, err
	}

	switch rest := flags.Args(); len(rest) {
	case 0:
	case 1:
		config.Path = rest[0]
	default:
		return nil, fmt.Errorf("config: unexpected argument: %s", rest[1])
	}
	return &config, nil
}

func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}
	return flags
}

// IsHelp reports whether err came from -h or --help.
func IsHelp(err error) bool {
	return errors.Is(err, ErrHelp)
}
