package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/subhaanfazeel/solo/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"~/.config/solo/config.toml" type:"path"`
	EnvFile []string         `name:"env-file" help:"Dotenv files loaded before the config" default:".env"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" default:"withargs" help:"Start the terminal UI"`
	Agent   AgentCmd   `cmd:"" help:"Serve the caching agent as a standalone proxy"`
	Scan    ScanCmd    `cmd:"" help:"Resync once and report overdue tasks"`
	Cache   CacheCmd   `cmd:"" help:"Inspect or purge cache generations"`
	Control ControlCmd `cmd:"" help:"Send a control message to a running agent"`
}

// AfterApply runs after flag parsing; sets up stderr logging and loads env files.
func (c *CLI) AfterApply() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.level()})))
	if err := config.LoadEnvFile(c.EnvFile...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *CLI) level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// logToFile points the default logger at path so the TUI owns the terminal.
func logToFile(path string, level slog.Level) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}
