package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/subhaanfazeel/solo/internal/logtail"
	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/resync"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

// Dispatcher runs user commands through the sync engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd resync.Command) (solo.MutationResult, error)
}

// ShopFetcher loads the shop catalog independently of the snapshot.
type ShopFetcher interface {
	FetchShop(ctx context.Context) ([]solo.ShopItem, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    Dispatcher
	Store     *state.Store
	Presenter *notify.Presenter
	Shop      ShopFetcher
	LogFile   string
	LogFs     afero.Fs
	ThemeName string
	Now       func() time.Time
}

const (
	logFetchLimit = 400
	clockTick     = 30 * time.Second
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	engine    Dispatcher
	store     *state.Store
	presenter *notify.Presenter
	shop      ShopFetcher
	logFile   string
	logFs     afero.Fs
	now       func() time.Time

	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	view     state.View
	frame    resync.Frame
	hasFrame bool
	offline  error

	// busy disables mutations while one is in flight.
	busy   bool
	status string

	cursor   map[state.View]int
	form     *form
	confirm  bool
	showHelp bool

	sounds bool

	shopItems   []solo.ShopItem
	shopErr     error
	shopLoading bool

	logEntries  []logtail.Entry
	logErr      error
	logViewport viewport.Model
}

// NewModel creates a new Bubble Tea model.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = notify.New()
	}
	logFs := opts.LogFs
	if logFs == nil {
		logFs = afero.NewOsFs()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	return Model{
		ctx:         ctx,
		engine:      opts.Engine,
		store:       store,
		presenter:   presenter,
		shop:        opts.Shop,
		logFile:     opts.LogFile,
		logFs:       logFs,
		now:         now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		view:        store.View(),
		cursor:      make(map[state.View]int),
		logViewport: viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{clockCmd()}
	if cmd := m.enterView(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.logViewport.Width = max(msg.Width-4, 20)
		m.logViewport.Height = max(msg.Height-7, 5)
		m.updateLogViewport()
		return m, nil

	case frameMsg:
		m.frame = resync.Frame(msg)
		m.hasFrame = true
		m.offline = nil
		m.sounds = m.frame.State.Data.Settings.Sounds
		// A frame rendered before a local view switch carries the old view;
		// only follow it when the store still agrees.
		if m.frame.View != m.view && m.frame.View == m.store.View() {
			m.view = m.frame.View
			cmd := m.enterView()
			return m, cmd
		}
		m.clampCursor()
		return m, nil

	case offlineMsg:
		m.offline = msg.err
		snap := m.store.Snapshot()
		if snap.HasData {
			m.frame.State = snap
			m.frame.View = snap.View
			m.hasFrame = true
		}
		return m, nil

	case dispatchDoneMsg:
		m.busy = false
		m.status = dispatchStatus(msg)
		if msg.cmd.Action == resync.ActionBuyItem || msg.cmd.Action == resync.ActionAddShopItem ||
			msg.cmd.Action == resync.ActionDeleteShopItem {
			return m, m.fetchShopCmd()
		}
		return m, nil

	case enableInputMsg:
		m.busy = false
		return m, nil

	case modalChangedMsg:
		return m, nil

	case shopMsg:
		m.shopLoading = false
		m.shopErr = msg.err
		if msg.err == nil {
			m.shopItems = msg.items
		}
		m.clampCursor()
		return m, nil

	case logsMsg:
		m.logErr = msg.err
		if msg.err == nil {
			m.logEntries = msg.entries
		}
		m.updateLogViewport()
		return m, nil

	case clockMsg:
		var cmds []tea.Cmd
		cmds = append(cmds, clockCmd())
		if m.view == state.ViewLogs {
			cmds = append(cmds, m.fetchLogsCmd())
		}
		return m, tea.Batch(cmds...)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if ev, ok := m.presenter.Current(); ok {
		return m.renderModal(ev)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.form != nil {
		return m.renderForm()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// The modal swallows keys until dismissed.
	if ev, ok := m.presenter.Current(); ok {
		if !ev.RequiresAck || key.Matches(msg, m.keys.Confirm, m.keys.Cancel) || msg.String() == " " {
			m.presenter.Acknowledge()
		}
		return m, nil
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	if m.confirm {
		m.confirm = false
		if msg.String() == "y" || msg.String() == "Y" {
			return m.dispatch(resync.Command{Action: resync.ActionResetAll})
		}
		m.status = "Reset cancelled"
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil
	case key.Matches(msg, m.keys.NextView):
		return m.switchView(stepView(m.view, 1))
	case key.Matches(msg, m.keys.PrevView):
		return m.switchView(stepView(m.view, -1))
	case key.Matches(msg, m.keys.Jump):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(state.Views) {
			return m.switchView(state.Views[idx])
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		var cmds []tea.Cmd
		if m.view == state.ViewLogs {
			cmds = append(cmds, m.fetchLogsCmd())
		}
		if m.view == state.ViewShop {
			cmds = append(cmds, m.fetchShopCmd())
		}
		next, cmd := m.dispatch(resync.Command{Action: resync.ActionRefresh})
		return next, tea.Batch(append(cmds, cmd)...)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.cursor[m.view] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursor[m.view] = max(m.listLen()-1, 0)
		return m, nil
	}

	return m.handleViewKey(msg)
}

// handleViewKey processes the per-view action keys.
func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	data := m.frame.State.Data
	idx := m.cursor[m.view]

	switch m.view {
	case state.ViewMain:
		if key.Matches(msg, m.keys.Name) {
			m.form = nameForm(data.Name)
		}

	case state.ViewTasks:
		switch {
		case key.Matches(msg, m.keys.Add):
			m.form = taskForm()
		case key.Matches(msg, m.keys.Toggle):
			if idx < len(data.Tasks) {
				return m.dispatch(resync.Command{Action: resync.ActionToggleTask, Index: idx})
			}
		case key.Matches(msg, m.keys.Edit):
			if idx < len(data.Tasks) {
				m.form = editTaskForm(idx, data.Tasks[idx])
			}
		case key.Matches(msg, m.keys.Delete):
			if idx < len(data.Tasks) {
				return m.dispatch(resync.Command{Action: resync.ActionDeleteTask, Index: idx})
			}
		}

	case state.ViewNonNeg:
		rules := len(data.NonNegotiables)
		switch {
		case key.Matches(msg, m.keys.Add):
			m.form = ruleForm()
		case key.Matches(msg, m.keys.Punishment):
			m.form = punishmentForm()
		case key.Matches(msg, m.keys.Edit):
			if idx < rules {
				m.form = editRuleForm(idx, data.NonNegotiables[idx])
			}
		case key.Matches(msg, m.keys.Delete):
			if idx < rules {
				return m.dispatch(resync.Command{Action: resync.ActionDeleteRule, Index: idx})
			}
			if p := idx - rules; p >= 0 && p < len(data.Punishments) {
				return m.dispatch(resync.Command{Action: resync.ActionDeletePunishment, Index: p})
			}
		}

	case state.ViewShop:
		switch {
		case key.Matches(msg, m.keys.Add):
			m.form = shopItemForm()
		case key.Matches(msg, m.keys.Buy):
			if idx < len(m.shopItems) {
				return m.dispatch(resync.Command{Action: resync.ActionBuyItem, ID: m.shopItems[idx].ID})
			}
		case key.Matches(msg, m.keys.Delete):
			if idx < len(m.shopItems) {
				return m.dispatch(resync.Command{Action: resync.ActionDeleteShopItem, ID: m.shopItems[idx].ID})
			}
		}

	case state.ViewDiary:
		if key.Matches(msg, m.keys.Add) {
			m.form = diaryForm()
		}

	case state.ViewSettings:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.sounds = !m.sounds
		case key.Matches(msg, m.keys.Save):
			return m.dispatch(resync.Command{Action: resync.ActionSaveSettings, Sounds: m.sounds})
		case key.Matches(msg, m.keys.Reset):
			m.confirm = true
		}

	case state.ViewLogs:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form = nil
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.form.focus < len(m.form.fields)-1 {
			m.form.next()
			return m, nil
		}
		return m.submitForm()
	case key.Matches(msg, m.keys.NextField):
		m.form.next()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.prev()
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := *m.form
	f.fields = append([]field(nil), m.form.fields...)
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	m.form = &f
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	cmd, err := m.form.command()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	next, teaCmd := m.dispatch(cmd)
	nm := next.(Model)
	if nm.busy {
		nm.form = nil
	}
	return nm, teaCmd
}

// dispatch sends cmd through the engine unless a mutation is already in
// flight.
func (m Model) dispatch(cmd resync.Command) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "Busy, please wait"
		return m, nil
	}
	if m.engine == nil {
		return m, nil
	}
	m.busy = true
	m.status = ""
	ctx, engine := m.ctx, m.engine
	return m, func() tea.Msg {
		res, err := engine.Dispatch(ctx, cmd)
		return dispatchDoneMsg{cmd: cmd, res: res, err: err}
	}
}

func (m Model) switchView(v state.View) (tea.Model, tea.Cmd) {
	if v == m.view {
		return m, nil
	}
	m.view = v
	m.store.SetView(v)
	m.status = ""
	m.confirm = false
	cmd := m.enterView()
	return m, cmd
}

// enterView loads the data a view fetches on its own.
func (m *Model) enterView() tea.Cmd {
	switch m.view {
	case state.ViewShop:
		m.shopLoading = true
		return m.fetchShopCmd()
	case state.ViewLogs:
		return m.fetchLogsCmd()
	}
	return nil
}

func (m Model) fetchShopCmd() tea.Cmd {
	if m.shop == nil {
		return nil
	}
	ctx, shop := m.ctx, m.shop
	return func() tea.Msg {
		items, err := shop.FetchShop(ctx)
		return shopMsg{items: items, err: err}
	}
}

func (m Model) fetchLogsCmd() tea.Cmd {
	if m.logFile == "" {
		return nil
	}
	fsys, path := m.logFs, m.logFile
	return func() tea.Msg {
		lines, err := logtail.Read(fsys, path, logFetchLimit)
		if err != nil {
			return logsMsg{err: err}
		}
		return logsMsg{entries: logtail.ParseAll(lines)}
	}
}

func (m Model) listLen() int {
	data := m.frame.State.Data
	switch m.view {
	case state.ViewTasks:
		return len(data.Tasks)
	case state.ViewNonNeg:
		return len(data.NonNegotiables) + len(data.Punishments)
	case state.ViewShop:
		return len(m.shopItems)
	case state.ViewDiary:
		return len(data.Diary)
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	if m.view == state.ViewLogs {
		if delta < 0 {
			m.logViewport.ScrollUp(1)
		} else {
			m.logViewport.ScrollDown(1)
		}
		return
	}
	n := m.listLen()
	if n == 0 {
		m.cursor[m.view] = 0
		return
	}
	m.cursor[m.view] = min(max(m.cursor[m.view]+delta, 0), n-1)
}

func (m *Model) clampCursor() {
	n := m.listLen()
	if m.cursor[m.view] >= n {
		m.cursor[m.view] = max(n-1, 0)
	}
}

func stepView(current state.View, delta int) state.View {
	for i, v := range state.Views {
		if v == current {
			return state.Views[(i+delta+len(state.Views))%len(state.Views)]
		}
	}
	return state.ViewMain
}

func dispatchStatus(msg dispatchDoneMsg) string {
	switch {
	case errors.Is(msg.err, resync.ErrEmptyInput):
		return "Nothing to save"
	case errors.Is(msg.err, solo.ErrOffline):
		return "Offline: changes were not sent"
	case msg.err != nil:
		slog.Debug("dispatch failed", "action", msg.cmd.Action.String(), "error", msg.err)
		return fmt.Sprintf("Failed: %v", msg.err)
	}
	return ""
}

// Messages

type frameMsg resync.Frame

type offlineMsg struct{ err error }

type enableInputMsg struct{}

type modalChangedMsg struct{}

type dispatchDoneMsg struct {
	cmd resync.Command
	res solo.MutationResult
	err error
}

type shopMsg struct {
	items []solo.ShopItem
	err   error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

type clockMsg time.Time

func clockCmd() tea.Cmd {
	return tea.Tick(clockTick, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
