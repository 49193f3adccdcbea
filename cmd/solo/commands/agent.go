package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/subhaanfazeel/solo/internal/agent"
	"github.com/subhaanfazeel/solo/internal/app"
	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/metrics"
	"github.com/subhaanfazeel/solo/internal/solo"
)

// AgentCmd implements the 'agent' command.
type AgentCmd struct {
	Listen   string `help:"Listen address (overrides config)"`
	Strategy string `help:"Caching strategy: stale-while-populate or network-first"`
	Watch    bool   `help:"Reinstall when the config file changes"`
}

func (c *AgentCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.Agent.Listen = c.Listen
	}
	if c.Strategy != "" {
		cfg.Agent.Strategy = c.Strategy
	}
	if c.Watch {
		cfg.Agent.WatchConfig = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunAgent(ctx, cfg, root.Config)
}

// RunAgent serves the agent as a reverse proxy in front of cfg.Server until
// ctx is cancelled.
func RunAgent(ctx context.Context, cfg config.Config, configPath string) error {
	origin, err := solo.ParseServer(cfg.Server)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	installCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	a, err := app.BuildAgent(installCtx, cfg.Agent, origin, http.DefaultTransport, rec)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Store().Close(); err != nil {
			slog.Warn("close cache store", "error", err)
		}
	}()

	if cfg.Agent.NATSURL != "" {
		sub, err := agent.SubscribeControl(ctx, cfg.Agent.NATSURL, cfg.Agent.NATSSubject, a)
		if err != nil {
			return err
		}
		defer sub.Close()
	}

	if cfg.Agent.WatchConfig {
		w, err := agent.NewManifestWatcher(configPath, func() (agent.Manifest, error) {
			fresh, err := config.Load(configPath)
			if err != nil {
				return agent.Manifest{}, err
			}
			return app.ManifestFor(fresh.Agent), nil
		}, a)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.Agent.Listen,
		Handler:           agent.NewHandler(a, metrics.HTTPHandler(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("agent listening", "addr", srv.Addr, "origin", origin.String(), "strategy", a.Strategy().Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err, ok := <-errChan:
		if ok && err != nil {
			return fmt.Errorf("agent server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown agent server: %w", err)
	}
	slog.Info("agent stopped")
	return nil
}
