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

// StaleWhilePopulate warms the app shell on install, keeps only the current
// generation on activate, and serves network responses while copying
// same-origin 200s into the cache. With no network it answers from the
// cache, or with an empty 503.
type StaleWhilePopulate struct{}

func (StaleWhilePopulate) Name() string { return StrategyStaleWhilePopulate }

func (StaleWhilePopulate) SkipWaitingOnInstall() bool { return false }

// Install fetches every manifest asset into the current generation. A
// failing asset is skipped; installation still succeeds.
func (StaleWhilePopulate) Install(ctx context.Context, env Env) error {
	if _, err := env.Store.Open(ctx, env.Manifest.CacheName()); err != nil {
		return err
	}
	for _, u := range env.Manifest.URLs(env.Origin) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			continue
		}
		resp, err := env.Next.RoundTrip(req)
		if err != nil {
			slog.Debug("warm-up fetch failed", "url", u.String(), "error", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			slog.Debug("warm-up skipped", "url", u.String(), "status", resp.StatusCode, "error", err)
			continue
		}
		store(ctx, env, cachestore.Key(u), cachestore.Entry{
			Status:   resp.StatusCode,
			Header:   resp.Header.Clone(),
			Body:     body,
			StoredAt: time.Now(),
		})
	}
	return nil
}

// Activate deletes every generation except the current one.
func (StaleWhilePopulate) Activate(ctx context.Context, env Env) error {
	current := env.Manifest.CacheName()
	names, err := env.Store.Keys(ctx)
	if err != nil {
		return err
	}
	purged := 0
	for _, name := range names {
		if name == current {
			continue
		}
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
func (s StaleWhilePopulate) Fetch(req *http.Request, env Env) (*http.Response, error) {
	rec := recorder(env)
	if req.Method != http.MethodGet {
		rec.IncFetch(s.Name(), metrics.OutcomePassthrough)
		return env.Next.RoundTrip(req)
	}
	ctx := req.Context()
	key := cachestore.Key(req.URL)

	resp, err := env.Next.RoundTrip(req)
	if err == nil {
		if resp.StatusCode != http.StatusOK || !sameOrigin(req.URL, env.Origin) {
			rec.IncFetch(s.Name(), metrics.OutcomeNetwork)
			return resp, nil
		}
		// The body is read once; the cache and the caller each get the
		// same bytes.
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
	rec.IncFetch(s.Name(), metrics.OutcomeFallback503)
	return serviceUnavailable(req), nil
}

func serviceUnavailable(req *http.Request) *http.Response {
	return &http.Response{
		Status:        "503 Service Unavailable",
		StatusCode:    http.StatusServiceUnavailable,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          http.NoBody,
		ContentLength: 0,
		Request:       req,
	}
}
