package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/subhaanfazeel/solo/internal/agent"
	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/deadline"
	"github.com/subhaanfazeel/solo/internal/metrics"
	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/prefs"
	"github.com/subhaanfazeel/solo/internal/resync"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
	"github.com/subhaanfazeel/solo/internal/ui"
)

// AutoHideDelay is when the one-shot notification auto-hide fires.
const AutoHideDelay = 8 * time.Second

// Options configure the solo application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/solo/prefs.toml
	NoAgent    bool
}

// RuntimeOptions tune NewRuntime. Zero values use defaults.
type RuntimeOptions struct {
	DisableAgent bool
	Next         http.RoundTripper
	Recorder     metrics.Recorder
}

// Runtime is the wired client: one store, one presenter, one engine.
type Runtime struct {
	Config    config.Config
	Client    *solo.Client
	Store     *state.Store
	Presenter *notify.Presenter
	Scanner   *deadline.Scanner
	Engine    *resync.Engine
	Agent     *agent.Agent
}

// NewRuntime builds the client stack for cfg. When the agent is enabled the
// HTTP client routes through it, so reads keep working from cache while the
// server is down.
func NewRuntime(ctx context.Context, cfg config.Config, opts RuntimeOptions) (*Runtime, error) {
	origin, err := solo.ParseServer(cfg.Server)
	if err != nil {
		return nil, err
	}
	next := opts.Next
	if next == nil {
		next = http.DefaultTransport
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	rt := &Runtime{Config: cfg}

	transport := next
	if cfg.Agent.Enabled && !opts.DisableAgent {
		installCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		a, err := BuildAgent(installCtx, cfg.Agent, origin, next, rec)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("init caching agent: %w", err)
		}
		rt.Agent = a
		transport = a
	}

	client, err := solo.NewClient(origin.String(), solo.ClientOptions{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("init solo client: %w", err)
	}

	rt.Client = client
	rt.Store = &state.Store{}
	rt.Presenter = notify.New()
	rt.Scanner = deadline.NewScanner(rt.Store, rt.Presenter, deadline.Options{
		Reporter: client,
		Recorder: rec,
	})
	rt.Engine = resync.New(client, rt.Store, resync.Options{
		Scanner:   rt.Scanner,
		Presenter: rt.Presenter,
		Recorder:  rec,
	})
	return rt, nil
}

// Close releases the agent's cache store.
func (rt *Runtime) Close() error {
	if rt.Agent == nil {
		return nil
	}
	return rt.Agent.Store().Close()
}

// Run boots the solo TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load solo config: %w", err)
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	rt, err := NewRuntime(ctx, cfg, RuntimeOptions{DisableAgent: opts.NoAgent})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Warn("close cache store", "error", err)
		}
	}()
	rt.Store.SetView(userPrefs.View())

	tui := ui.New(ui.Options{
		Context:   ctx,
		Engine:    rt.Engine,
		Store:     rt.Store,
		Presenter: rt.Presenter,
		Shop:      rt.Client,
		LogFile:   cfg.LogFile,
		ThemeName: userPrefs.Theme,
	})
	rt.Engine.SetRenderer(tui)

	stopHide := rt.Presenter.StartAutoHide(ctx, AutoHideDelay)
	defer stopHide()
	stopSafety := ArmSafetyNet(ctx, SafetyDelay, tui, rt.Presenter)
	defer stopSafety()

	sched, err := NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.ScheduleScan(ctx, cfg.ScanInterval, func(ctx context.Context) {
		rt.Scanner.ScanStore(ctx)
	}); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Warn("stop scheduler", "error", err)
		}
	}()

	go func() {
		if err := rt.Engine.Resync(ctx); err != nil {
			slog.Info("initial load failed", "error", err)
		}
	}()

	runErr := tui.Run()

	userPrefs.Theme = tui.ThemeName()
	userPrefs.LastView = string(rt.Store.View())
	if err := prefs.Save(opts.PrefsPath, userPrefs); err != nil {
		slog.Warn("save prefs", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
