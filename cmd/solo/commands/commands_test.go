package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/subhaanfazeel/solo/internal/agent"
	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/solo"
)

func TestListAndPurgeGenerations(t *testing.T) {
	ctx := context.Background()
	store := cachestore.NewMemory(0)
	defer store.Close()

	for _, name := range []string{"solo-cache-v1", "solo-cache-v2"} {
		c, err := store.Open(ctx, name)
		if err != nil {
			t.Fatalf("Open(%s): %v", name, err)
		}
		if err := c.Put(ctx, "http://x/"+name, cachestore.Entry{Status: 200}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	var out bytes.Buffer
	if err := listGenerations(ctx, &out, store); err != nil {
		t.Fatalf("listGenerations: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "solo-cache-v1\t1 entries") || !strings.Contains(got, "solo-cache-v2") {
		t.Fatalf("list output = %q", got)
	}

	out.Reset()
	if err := purgeGenerations(ctx, &out, store, []string{"solo-cache-v1", "missing"}); err != nil {
		t.Fatalf("purgeGenerations: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "deleted solo-cache-v1") || !strings.Contains(got, "missing not found") {
		t.Fatalf("purge output = %q", got)
	}

	out.Reset()
	if err := purgeGenerations(ctx, &out, store, nil); err != nil {
		t.Fatalf("purge all: %v", err)
	}
	keys, _ := store.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("keys after purge all = %v, want none", keys)
	}

	out.Reset()
	if err := listGenerations(ctx, &out, store); err != nil {
		t.Fatalf("listGenerations: %v", err)
	}
	if !strings.Contains(out.String(), "no cache generations") {
		t.Fatalf("empty list output = %q", out.String())
	}
}

func TestAgentURL(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.Listen = "127.0.0.1:9090"
	if got := agentURL(cfg, agent.StatusPath); got != "http://127.0.0.1:9090/__agent/status" {
		t.Fatalf("agentURL = %q", got)
	}
	cfg.Agent.Listen = "https://agent.local/"
	if got := agentURL(cfg, agent.ControlPath); got != "https://agent.local/__agent/control" {
		t.Fatalf("agentURL = %q", got)
	}
}

func TestControlOverHTTP(t *testing.T) {
	strategy, err := agent.NewStrategy(agent.StrategyNetworkFirst)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	a := agent.New(agent.Options{Strategy: strategy, Store: cachestore.NewMemory(0)})
	srv := httptest.NewServer(agent.NewHandler(a, nil))
	defer srv.Close()

	var out bytes.Buffer
	if err := printStatus(srv.Client(), srv.URL+agent.StatusPath, &out); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "strategy: network-first") || !strings.Contains(got, "active:   -") {
		t.Fatalf("status output = %q", got)
	}

	err = postControl(srv.Client(), srv.URL+agent.ControlPath, agent.ControlSkipWaiting)
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Fatalf("postControl with no waiting worker = %v, want 409 conflict", err)
	}
}

func TestRunScan_PrintsCountdownsAndOverdue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(solo.DataResponse{Data: solo.Snapshot{
			Name: "Jin",
			Tasks: []solo.Task{
				{ID: "1", Text: "run", Deadline: "2026-03-12T12:00"},
				{ID: "2", Text: "read"},
				{ID: "3", Text: "done already", Done: true},
			},
		}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default()
	cfg.Server = srv.URL
	cfg.RequestTimeout = 2 * time.Second

	var out bytes.Buffer
	if err := RunScan(context.Background(), &out, cfg, true, now); err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "2d left") || !strings.Contains(got, "run") {
		t.Fatalf("output missing countdown: %q", got)
	}
	if !strings.Contains(got, "no deadline") || strings.Contains(got, "done already") {
		t.Fatalf("output = %q", got)
	}
}
