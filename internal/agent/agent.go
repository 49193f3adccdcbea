package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/subhaanfazeel/solo/internal/cachestore"
	"github.com/subhaanfazeel/solo/internal/metrics"
)

// Phase is a worker's lifecycle position.
type Phase int

const (
	PhaseInstalling Phase = iota
	PhaseWaiting
	PhaseActivating
	PhaseActive
	PhaseRedundant
)

func (p Phase) String() string {
	switch p {
	case PhaseInstalling:
		return "installing"
	case PhaseWaiting:
		return "waiting"
	case PhaseActivating:
		return "activating"
	case PhaseActive:
		return "active"
	default:
		return "redundant"
	}
}

var (
	// ErrNoWaitingWorker is returned by SkipWaiting when nothing is pending.
	ErrNoWaitingWorker = errors.New("no waiting worker")
	// ErrUnknownControl is returned for control messages of an unknown type.
	ErrUnknownControl = errors.New("unknown control message")
)

// ControlSkipWaiting is the control message type that activates a waiting
// worker.
const ControlSkipWaiting = "SKIP_WAITING"

// ControlMessage is the page-to-agent control payload.
type ControlMessage struct {
	Type string `json:"type"`
}

type worker struct {
	id       string
	manifest Manifest
	phase    Phase
}

// WorkerInfo describes a worker for status reporting.
type WorkerInfo struct {
	ID         string `json:"id"`
	Generation string `json:"generation"`
	Phase      string `json:"phase"`
}

// Status is a point-in-time view of the agent.
type Status struct {
	Strategy string      `json:"strategy"`
	Active   *WorkerInfo `json:"active,omitempty"`
	Waiting  *WorkerInfo `json:"waiting,omitempty"`
}

// Options configure an Agent.
type Options struct {
	Strategy Strategy
	Store    cachestore.Store
	Origin   *url.URL
	Next     http.RoundTripper
	Recorder metrics.Recorder
}

// Agent intercepts requests below an HTTP client or proxy. At most one
// worker is active and at most one waits. Requests are served by the active
// worker; with none active they go straight to the network.
type Agent struct {
	strategy Strategy
	store    cachestore.Store
	origin   *url.URL
	next     http.RoundTripper
	recorder metrics.Recorder

	// lifecycle serializes install and activation.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	active  *worker
	waiting *worker
}

// New builds an agent. Strategy defaults to StaleWhilePopulate, Store to an
// in-memory store and Next to http.DefaultTransport.
func New(opts Options) *Agent {
	a := &Agent{
		strategy: opts.Strategy,
		store:    opts.Store,
		origin:   opts.Origin,
		next:     opts.Next,
		recorder: opts.Recorder,
	}
	if a.strategy == nil {
		a.strategy = StaleWhilePopulate{}
	}
	if a.store == nil {
		a.store = cachestore.NewMemory(0)
	}
	if a.next == nil {
		a.next = http.DefaultTransport
	}
	if a.recorder == nil {
		a.recorder = metrics.NoopRecorder{}
	}
	return a
}

// Strategy returns the agent's caching policy.
func (a *Agent) Strategy() Strategy { return a.strategy }

// Store returns the cache store.
func (a *Agent) Store() cachestore.Store { return a.store }

// Install registers a worker for m. The worker activates at once when no
// worker is active or when the strategy skips waiting; otherwise it waits
// for SkipWaiting, replacing any previously waiting worker. Installing the
// version that is already active is a no-op.
func (a *Agent) Install(ctx context.Context, m Manifest) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.RLock()
	current := a.active
	a.mu.RUnlock()
	if current != nil && current.manifest.CacheName() == m.CacheName() {
		slog.Debug("manifest already active", "generation", m.CacheName())
		return nil
	}

	w := &worker{id: uuid.NewString(), manifest: m, phase: PhaseInstalling}
	slog.Info("installing worker", "generation", m.CacheName(), "strategy", a.strategy.Name(), "worker", w.id)
	if err := a.strategy.Install(ctx, a.env(w)); err != nil {
		w.phase = PhaseRedundant
		return fmt.Errorf("install %s: %w", m.CacheName(), err)
	}

	a.mu.Lock()
	w.phase = PhaseWaiting
	if a.waiting != nil {
		a.waiting.phase = PhaseRedundant
	}
	a.waiting = w
	immediate := a.active == nil || a.strategy.SkipWaitingOnInstall()
	a.mu.Unlock()

	if !immediate {
		slog.Info("worker waiting", "generation", m.CacheName(), "worker", w.id)
		return nil
	}
	return a.activateLocked(ctx)
}

// SkipWaiting activates the waiting worker.
func (a *Agent) SkipWaiting(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()
	return a.activateLocked(ctx)
}

// activateLocked promotes the waiting worker. The caller holds lifecycle.
func (a *Agent) activateLocked(ctx context.Context) error {
	a.mu.Lock()
	w := a.waiting
	if w == nil {
		a.mu.Unlock()
		return ErrNoWaitingWorker
	}
	w.phase = PhaseActivating
	a.mu.Unlock()

	if err := a.strategy.Activate(ctx, a.env(w)); err != nil {
		slog.Warn("activation cleanup failed", "generation", w.manifest.CacheName(), "error", err)
	}

	a.mu.Lock()
	if a.active != nil {
		a.active.phase = PhaseRedundant
	}
	w.phase = PhaseActive
	a.active = w
	if a.waiting == w {
		a.waiting = nil
	}
	a.mu.Unlock()

	slog.Info("worker active", "generation", w.manifest.CacheName(), "worker", w.id)
	return nil
}

// HandleControl applies one JSON control message.
func (a *Agent) HandleControl(ctx context.Context, raw []byte) error {
	var msg ControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}
	switch msg.Type {
	case ControlSkipWaiting:
		return a.SkipWaiting(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, msg.Type)
	}
}

// RoundTrip implements http.RoundTripper. Requests go through the active
// worker's strategy; with no active worker they pass through unchanged.
func (a *Agent) RoundTrip(req *http.Request) (*http.Response, error) {
	a.mu.RLock()
	w := a.active
	a.mu.RUnlock()
	if w == nil {
		a.recorder.IncFetch(a.strategy.Name(), metrics.OutcomePassthrough)
		return a.next.RoundTrip(req)
	}
	return a.strategy.Fetch(req, a.env(w))
}

// Status reports the active and waiting workers.
func (a *Agent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st := Status{Strategy: a.strategy.Name()}
	if a.active != nil {
		st.Active = a.active.info()
	}
	if a.waiting != nil {
		st.Waiting = a.waiting.info()
	}
	return st
}

func (a *Agent) env(w *worker) Env {
	return Env{
		Store:    a.store,
		Manifest: w.manifest,
		Origin:   a.origin,
		Next:     a.next,
		Recorder: a.recorder,
	}
}

func (w *worker) info() *WorkerInfo {
	return &WorkerInfo{ID: w.id, Generation: w.manifest.CacheName(), Phase: w.phase.String()}
}
