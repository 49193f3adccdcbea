package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/metrics"
)

// Env is what a strategy sees of the agent: the shared store, the manifest
// of the worker it runs for, the origin and the network below it.
type Env struct {
	Store    cachestore.Store
	Manifest Manifest
	Origin   *url.URL
	Next     http.RoundTripper
	Recorder metrics.Recorder
}

// Strategy is one caching policy. An agent runs exactly one.
type Strategy interface {
	Name() string
	// SkipWaitingOnInstall reports whether a freshly installed worker
	// activates at once even when another worker is active.
	SkipWaitingOnInstall() bool
	Install(ctx context.Context, env Env) error
	Activate(ctx context.Context, env Env) error
	Fetch(req *http.Request, env Env) (*http.Response, error)
}

// Strategy names accepted by NewStrategy.
const (
	StrategyStaleWhilePopulate = "stale-while-populate"
	StrategyNetworkFirst       = "network-first"
)

// NewStrategy returns the strategy registered under name. The empty name
// selects stale-while-populate.
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyStaleWhilePopulate, "a":
		return StaleWhilePopulate{}, nil
	case StrategyNetworkFirst, "b":
		return NetworkFirst{}, nil
	default:
		return nil, fmt.Errorf("unknown caching strategy %q", name)
	}
}

// store puts a copy of the response into the current generation. Failures
// are logged and counted, never returned.
func store(ctx context.Context, env Env, key string, entry cachestore.Entry) {
	cache, err := env.Store.Open(ctx, env.Manifest.CacheName())
	if err == nil {
		err = cache.Put(ctx, key, entry)
	}
	if err != nil {
		slog.Debug("cache write failed", "key", key, "driver", env.Store.Driver(), "error", err)
		recorder(env).IncCacheWriteFailure(string(env.Store.Driver()))
	}
}

// match looks key up across every generation. Read errors count as a miss.
func match(ctx context.Context, env Env, key string) (cachestore.Entry, bool) {
	e, ok, err := env.Store.Match(ctx, key)
	if err != nil {
		slog.Debug("cache read failed", "key", key, "error", err)
		return cachestore.Entry{}, false
	}
	return e, ok
}

func recorder(env Env) metrics.Recorder {
	if env.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return env.Recorder
}

func sameOrigin(u, origin *url.URL) bool {
	if origin == nil || u == nil {
		return true
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}
