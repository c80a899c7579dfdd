// Package config handles client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/tlinford/zellij/internal/cli"
)

// Config holds client configuration.
type Config struct {
	// Keys contains keybinding configuration
	Keys KeyBindings `yaml:"keys"`

	// Env holds settings taken from the environment, never from the file
	Env Env `yaml:"-"`
}

// KeyBindings holds all configurable keybindings.
//
// Quit and CommandMode are active in normal mode, where every other key is
// forwarded to the focused pane. The rest apply in command mode.
type KeyBindings struct {
	Quit             string `yaml:"quit"`
	CommandMode      string `yaml:"command_mode"`
	NormalMode       string `yaml:"normal_mode"`
	NewPane          string `yaml:"new_pane"`
	CloseFocus       string `yaml:"close_focus"`
	FocusNextPane    string `yaml:"focus_next_pane"`
	ToggleFullscreen string `yaml:"toggle_fullscreen"`
	ScrollUp         string `yaml:"scroll_up"`
	ScrollDown       string `yaml:"scroll_down"`
	NewTab           string `yaml:"new_tab"`
	GoToNextTab      string `yaml:"go_to_next_tab"`
}

// Env holds environment overrides.
type Env struct {
	// Socket is the server's unix socket path
	Socket string `envconfig:"ZELLIJ_SOCKET" default:"/tmp/zellij/zellij.sock"`

	// LogDir receives the debug log
	LogDir string `envconfig:"ZELLIJ_LOG_DIR" default:"/tmp/zellij/zellij-log"`

	// ConnectTimeout bounds the wait for the server socket to appear
	ConnectTimeout time.Duration `envconfig:"ZELLIJ_CONNECT_TIMEOUT" default:"5s"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Keys: DefaultKeyBindings(),
		Env:  DefaultEnv(),
	}
}

// DefaultKeyBindings returns the default keybindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:             "ctrl+q",
		CommandMode:      "ctrl+g",
		NormalMode:       "esc",
		NewPane:          "n",
		CloseFocus:       "x",
		FocusNextPane:    "p",
		ToggleFullscreen: "f",
		ScrollUp:         "up",
		ScrollDown:       "down",
		NewTab:           "t",
		GoToNextTab:      "right",
	}
}

// DefaultEnv returns the environment settings used when nothing is set.
func DefaultEnv() Env {
	return Env{
		Socket:         "/tmp/zellij/zellij.sock",
		LogDir:         "/tmp/zellij/zellij-log",
		ConnectTimeout: 5 * time.Second,
	}
}

// FromCLI loads configuration the way the command line asks for it. With no
// config subcommand the default file is used if it exists. An explicit path
// must exist. --clean skips the file entirely.
func FromCLI(c *cli.ConfigCli) (*Config, error) {
	var (
		cfg *Config
		err error
	)

	switch {
	case c != nil && c.Clean:
		cfg = Default()
	case c != nil && c.Path != "":
		cfg, err = LoadFile(c.Path)
	default:
		cfg, err = loadOptional(DefaultConfigFile())
	}
	if err != nil {
		return nil, err
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.Env = env
	return cfg, nil
}

// LoadFile loads configuration from path, merged over defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, data)
}

// LoadEnv reads the environment overrides.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("environment: %w", err)
	}
	if err := ValidateEnv(&env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// loadOptional is LoadFile for the default location, where a missing file
// means defaults.
func loadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	cfg := Default()

	// Parse YAML into a temporary struct to merge with defaults
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mergeKeyBindings(&cfg.Keys, &fileCfg.Keys)

	if err := ValidateKeys(&cfg.Keys); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// mergeKeyBindings merges keybindings from src into dst.
// Only non-empty values from src are applied.
func mergeKeyBindings(dst, src *KeyBindings) {
	merge := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	merge(&dst.Quit, src.Quit)
	merge(&dst.CommandMode, src.CommandMode)
	merge(&dst.NormalMode, src.NormalMode)
	merge(&dst.NewPane, src.NewPane)
	merge(&dst.CloseFocus, src.CloseFocus)
	merge(&dst.FocusNextPane, src.FocusNextPane)
	merge(&dst.ToggleFullscreen, src.ToggleFullscreen)
	merge(&dst.ScrollUp, src.ScrollUp)
	merge(&dst.ScrollDown, src.ScrollDown)
	merge(&dst.NewTab, src.NewTab)
	merge(&dst.GoToNextTab, src.GoToNextTab)
}

// defaultConfigDir returns the default configuration directory.
func defaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "zellij")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zellij"
	}
	return filepath.Join(home, ".config", "zellij")
}

// DefaultConfigFile returns the path of the default config file.
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// LogFile returns the debug log path.
func (c *Config) LogFile() string {
	return filepath.Join(c.Env.LogDir, "zellij.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func (c *Config) EnsureLogDir() error {
	return os.MkdirAll(c.Env.LogDir, 0755)
}
