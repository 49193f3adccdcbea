package agent

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/metrics"
)

// NetworkFirst skips waiting on install, wipes every generation on activate,
// and mirrors each network response into the cache. With no network it
// answers from the cache; on a miss the network error is returned.
type NetworkFirst struct{}

func (NetworkFirst) Name() string { return StrategyNetworkFirst }

func (NetworkFirst) SkipWaitingOnInstall() bool { return true }

// Install does no warm-up.
func (NetworkFirst) Install(context.Context, Env) error { return nil }

// Activate deletes all generations, the current one included.
func (NetworkFirst) Activate(ctx context.Context, env Env) error {
	names, err := env.Store.Keys(ctx)
	if err != nil {
		return err
	}
	purged := 0
	for _, name := range names {
		if ok, err := env.Store.Delete(ctx, name); err != nil {
			slog.Debug("generation delete failed", "generation", name, "error", err)
		} else if ok {
			purged++
		}
	}
	recorder(env).AddGenerationsPurged(purged)
	return nil
}

// Fetch handles one request. Non-GET requests pass straight through.
func (s NetworkFirst) Fetch(req *http.Request, env Env) (*http.Response, error) {
	rec := recorder(env)
	if req.Method != http.MethodGet {
		rec.IncFetch(s.Name(), metrics.OutcomePassthrough)
		return env.Next.RoundTrip(req)
	}
	ctx := req.Context()
	key := cachestore.Key(req.URL)

	resp, err := env.Next.RoundTrip(req)
	if err == nil {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr == nil {
			store(ctx, env, key, cachestore.Entry{
				Status:   resp.StatusCode,
				Header:   resp.Header.Clone(),
				Body:     bytes.Clone(body),
				StoredAt: time.Now(),
			})
			resp.Body = io.NopCloser(bytes.NewReader(body))
			resp.ContentLength = int64(len(body))
			rec.IncFetch(s.Name(), metrics.OutcomeNetwork)
			return resp, nil
		}
		err = readErr
	}

	slog.Debug("network fetch failed, trying cache", "url", key, "error", err)
	if entry, ok := match(context.WithoutCancel(ctx), env, key); ok {
		rec.IncFetch(s.Name(), metrics.OutcomeCache)
		return entry.Response(req), nil
	}
	rec.IncFetch(s.Name(), metrics.OutcomeError)
	return nil, err
}
