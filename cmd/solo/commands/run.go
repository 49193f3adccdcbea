package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/subhaanfazeel/solo/internal/app"
)

// RunCmd implements the default 'run' command.
type RunCmd struct {
	Prefs   string `help:"Preferences file path (default ~/.config/solo/prefs.toml)" type:"path"`
	NoAgent bool   `name:"no-agent" help:"Talk to the server directly, without the caching agent"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	closer, err := logToFile(cfg.LogFile, root.level())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting solo", "server", cfg.Server, "agent", cfg.Agent.Enabled && !r.NoAgent)
	return app.Run(ctx, app.Options{
		ConfigPath: root.Config,
		PrefsPath:  r.Prefs,
		NoAgent:    r.NoAgent,
	})
}
