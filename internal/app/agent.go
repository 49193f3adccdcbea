package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/subhaanfazeel/solo/internal/agent"
	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/metrics"
)

// ManifestFor builds the app-shell manifest from the agent config.
func ManifestFor(cfg config.AgentConfig) agent.Manifest {
	return agent.NewManifest(cfg.CachePrefix, cfg.Version, cfg.Assets)
}

// BuildAgent opens the configured cache store, creates an agent in front of
// origin and installs the configured manifest. The caller owns the returned
// agent's store and must close it.
//
// Only configuration mistakes (unknown strategy or driver) are errors. A
// store that cannot be opened falls back to memory, and a failed install
// leaves the agent without an active worker, passing requests through.
func BuildAgent(ctx context.Context, cfg config.AgentConfig, origin *url.URL, next http.RoundTripper, rec metrics.Recorder) (*agent.Agent, error) {
	strategy, err := agent.NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	cache, err := cachestore.Open(ctx, cachestore.Options{
		Driver: cachestore.Driver(cfg.CacheDriver),
		Path:   cfg.CachePathFor(),
	})
	switch {
	case errors.Is(err, cachestore.ErrUnknownDriver):
		return nil, fmt.Errorf("open cache store: %w", err)
	case err != nil:
		slog.Warn("cache store unavailable, using memory",
			"driver", cfg.CacheDriver,
			"path", cfg.CachePathFor(),
			"error", err,
		)
		cache = cachestore.NewMemory(0)
	}

	a := agent.New(agent.Options{
		Strategy: strategy,
		Store:    cache,
		Origin:   origin,
		Next:     next,
		Recorder: rec,
	})
	manifest := ManifestFor(cfg)
	if err := a.Install(ctx, manifest); err != nil {
		slog.Warn("caching agent not installed, requests pass through",
			"generation", manifest.CacheName(),
			"error", err,
		)
		return a, nil
	}
	slog.Info("caching agent ready",
		"strategy", strategy.Name(),
		"driver", cache.Driver(),
		"generation", manifest.CacheName(),
	)
	return a, nil
}
