package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/resync"
)

// App owns the Bubble Tea program and adapts it to the sync engine's
// Renderer interface. Render and Offline block until the program reads the
// message, so they must not be called from inside Update.
type App struct {
	program *tea.Program

	mu    sync.Mutex
	final Model
}

var _ resync.Renderer = (*App)(nil)

// New builds the UI program. It subscribes to the presenter so modal changes
// redraw immediately.
func New(opts Options) *App {
	m := NewModel(opts)
	a := &App{final: m}
	popts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		popts = append(popts, tea.WithContext(opts.Context))
	}
	a.program = tea.NewProgram(m, popts...)

	m.presenter.Subscribe(func(notify.State, notify.Event) {
		// Listeners may fire from inside Update; never block the loop.
		go a.program.Send(modalChangedMsg{})
	})
	return a
}

// Render delivers a resync frame.
func (a *App) Render(f resync.Frame) {
	a.program.Send(frameMsg(f))
}

// Offline reports a failed resync.
func (a *App) Offline(err error) {
	a.program.Send(offlineMsg{err: err})
}

// EnableInput clears the busy flag left by a hung mutation.
func (a *App) EnableInput() {
	a.program.Send(enableInputMsg{})
}

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	final, err := a.program.Run()
	if m, ok := final.(Model); ok {
		a.mu.Lock()
		a.final = m
		a.mu.Unlock()
	}
	return err
}

// ThemeName returns the theme in use when the program exited.
func (a *App) ThemeName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.final.theme.Name
}
