package resync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/subhaanfazeel/solo/internal/metrics"
	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

// Frame is everything a renderer needs to redraw the active view.
type Frame struct {
	View     state.View
	State    state.Snapshot
	Greeting Greeting
	Overdue  []notify.Event
}

// Renderer redraws the UI after a resync.
type Renderer interface {
	Render(Frame)
	Offline(err error)
}

// Scanner evaluates deadlines against a fresh snapshot.
type Scanner interface {
	Scan(ctx context.Context, snap solo.Snapshot) []notify.Event
}

// Presenter shows structured mutation errors and confirmations.
type Presenter interface {
	Show(notify.Event)
}

// Options wire the optional collaborators of an Engine.
type Options struct {
	Scanner   Scanner
	Presenter Presenter
	Renderer  Renderer
	Recorder  metrics.Recorder
}

// Engine implements mutate-then-resync against the server. Every mutation
// is followed by a full snapshot fetch; nothing is patched locally.
type Engine struct {
	api       solo.API
	store     *state.Store
	scanner   Scanner
	presenter Presenter
	recorder  metrics.Recorder

	mu       sync.RWMutex
	renderer Renderer

	group singleflight.Group
	seq   atomic.Uint64
}

// New builds an Engine over api and store.
func New(api solo.API, store *state.Store, opts Options) *Engine {
	e := &Engine{
		api:       api,
		store:     store,
		scanner:   opts.Scanner,
		presenter: opts.Presenter,
		renderer:  opts.Renderer,
		recorder:  opts.Recorder,
	}
	if e.recorder == nil {
		e.recorder = metrics.NoopRecorder{}
	}
	return e
}

// SetRenderer swaps the renderer. The UI registers itself once its program
// exists.
func (e *Engine) SetRenderer(r Renderer) {
	e.mu.Lock()
	e.renderer = r
	e.mu.Unlock()
}

func (e *Engine) currentRenderer() Renderer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.renderer
}

// Store returns the engine's state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Mutate sends one POST and then resyncs regardless of the outcome. A
// structured {"error"} in the response is shown through the presenter.
func (e *Engine) Mutate(ctx context.Context, endpoint string, payload any) (solo.MutationResult, error) {
	res, postErr := e.api.Post(ctx, endpoint, payload)
	e.seq.Add(1)

	switch {
	case postErr != nil:
		slog.Warn("mutation failed", "endpoint", endpoint, "error", postErr)
	case res.Failed():
		slog.Info("mutation rejected", "endpoint", endpoint, "status", res.Status, "error", res.Error)
		e.show(notify.Event{Title: "Error", Body: res.Error, RequiresAck: true})
	default:
		slog.Debug("mutation sent", "endpoint", endpoint, "status", res.Status)
	}

	resyncErr := e.Resync(ctx)
	if postErr != nil {
		return res, postErr
	}
	return res, resyncErr
}

// Resync pings the server, fetches the full snapshot, replaces the store
// contents, runs the deadline scan and re-renders the active view. Callers
// that arrive while a fetch for the same mutation sequence is in flight
// share its result. On failure the previous snapshot stays in place and the
// renderer shows the offline placeholder.
func (e *Engine) Resync(ctx context.Context) error {
	key := strconv.FormatUint(e.seq.Load(), 10)
	_, err, shared := e.group.Do(key, func() (any, error) {
		return nil, e.resync(context.WithoutCancel(ctx))
	})
	if shared {
		slog.Debug("resync joined in-flight fetch", "seq", key)
	}
	return err
}

func (e *Engine) resync(ctx context.Context) error {
	if err := e.api.Ping(ctx); err != nil {
		slog.Debug("ping failed", "error", err)
	}

	snap, err := e.api.FetchSnapshot(ctx)
	if err != nil {
		e.store.Update(nil, err)
		e.recorder.IncResync(false)
		slog.Warn("resync failed", "error", err)
		if r := e.currentRenderer(); r != nil {
			r.Offline(err)
		}
		return fmt.Errorf("resync: %w", err)
	}
	e.store.Update(snap, nil)
	e.recorder.IncResync(true)

	var overdue []notify.Event
	if e.scanner != nil {
		overdue = e.scanner.Scan(ctx, *snap)
	}
	if r := e.currentRenderer(); r != nil {
		current := e.store.Snapshot()
		r.Render(Frame{
			View:     current.View,
			State:    current,
			Greeting: GreetingFor(current.Data),
			Overdue:  overdue,
		})
	}
	return nil
}

func (e *Engine) show(ev notify.Event) {
	if e.presenter != nil {
		e.presenter.Show(ev)
	}
}
