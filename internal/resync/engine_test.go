package resync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

type recordingRenderer struct {
	mu      sync.Mutex
	frames  []Frame
	offline []error
}

func (r *recordingRenderer) Render(f Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recordingRenderer) Offline(err error) {
	r.mu.Lock()
	r.offline = append(r.offline, err)
	r.mu.Unlock()
}

func (r *recordingRenderer) last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

// fakeServer keeps a task list and applies /api/tasks/add like the real
// backend.
type fakeServer struct {
	mu      sync.Mutex
	tasks   []solo.Task
	name    string
	pings   atomic.Int32
	gets    atomic.Int32
	failGet bool
	postErr string
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		f.pings.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		f.gets.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failGet {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(solo.DataResponse{Data: solo.Snapshot{Name: f.name, Tasks: f.tasks}})
	})
	mux.HandleFunc("/api/tasks/add", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Task     string `json:"task"`
			Deadline string `json:"deadline"`
			Coins    int    `json:"coins"`
			XP       int    `json:"xp"`
			Stat     string `json:"stat"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode add body: %v", err)
		}
		f.mu.Lock()
		f.tasks = append(f.tasks, solo.Task{Text: body.Task, Deadline: body.Deadline, Coins: body.Coins, XP: body.XP, Stat: body.Stat})
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/shop/buy/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": f.postErr})
	})
	mux.HandleFunc("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tasks = nil
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newTestEngine(t *testing.T, f *fakeServer) (*Engine, *recordingRenderer, *notify.Presenter) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client, err := solo.NewClient(srv.URL, solo.ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	renderer := &recordingRenderer{}
	presenter := notify.New()
	eng := New(client, &state.Store{}, Options{Presenter: presenter, Renderer: renderer})
	return eng, renderer, presenter
}

func TestDispatch_AddTaskRendersServerState(t *testing.T) {
	f := &fakeServer{tasks: []solo.Task{{Text: "Existing"}}}
	eng, renderer, _ := newTestEngine(t, f)

	if err := eng.Resync(context.Background()); err != nil {
		t.Fatalf("initial resync: %v", err)
	}

	_, err := eng.Dispatch(context.Background(), Command{Action: ActionAddTask, Text: "Read", Coins: 5, Stat: "discipline"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	frame := renderer.last()
	tasks := frame.State.Data.Tasks
	if len(tasks) != 2 {
		t.Fatalf("rendered tasks = %d, want 2", len(tasks))
	}
	got := tasks[1]
	if got.Text != "Read" || got.Coins != 5 || got.XP != 0 || got.Stat != "discipline" {
		t.Fatalf("new task = %#v, want Read/5/0/discipline", got)
	}
	if f.pings.Load() != 2 {
		t.Fatalf("pings = %d, want one per resync", f.pings.Load())
	}
}

func TestMutate_NoStaleRead(t *testing.T) {
	f := &fakeServer{}
	eng, renderer, _ := newTestEngine(t, f)
	_ = eng.Resync(context.Background())
	if n := len(renderer.last().State.Data.Tasks); n != 0 {
		t.Fatalf("pre-mutation tasks = %d, want 0", n)
	}

	_, _ = eng.Mutate(context.Background(), solo.EndpointTasksAdd, map[string]any{"task": "x"})

	if n := len(eng.Store().Snapshot().Data.Tasks); n != 1 {
		t.Fatalf("store tasks after mutate = %d, want 1", n)
	}
	if n := len(renderer.last().State.Data.Tasks); n != 1 {
		t.Fatalf("rendered tasks after mutate = %d, want 1", n)
	}
}

func TestMutate_StructuredErrorShownAndResynced(t *testing.T) {
	f := &fakeServer{postErr: "Not enough coins"}
	eng, renderer, presenter := newTestEngine(t, f)

	res, err := eng.Dispatch(context.Background(), Command{Action: ActionBuyItem, ID: 3})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Failed() || res.Error != "Not enough coins" {
		t.Fatalf("result = %#v, want structured error", res)
	}
	ev, ok := presenter.Current()
	if !ok || ev.Body != "Not enough coins" || !ev.RequiresAck {
		t.Fatalf("presenter = %#v (shown=%v), want ack-required error", ev, ok)
	}
	if len(renderer.frames) != 1 {
		t.Fatalf("frames = %d, want resync after failed mutation", len(renderer.frames))
	}
}

func TestResync_OfflineKeepsPreviousSnapshot(t *testing.T) {
	f := &fakeServer{name: "Jin"}
	eng, renderer, _ := newTestEngine(t, f)
	_ = eng.Resync(context.Background())

	f.mu.Lock()
	f.failGet = true
	f.mu.Unlock()

	if _, err := eng.Dispatch(context.Background(), Command{Action: ActionRefresh}); err == nil {
		t.Fatalf("expected resync error")
	}
	if len(renderer.offline) != 1 {
		t.Fatalf("offline calls = %d, want 1", len(renderer.offline))
	}
	snap := eng.Store().Snapshot()
	if snap.Data.Name != "Jin" || !snap.IsOffline() {
		t.Fatalf("snapshot = %#v offline=%v, want previous data and offline", snap.Data, snap.IsOffline())
	}
}

func TestDispatch_ResetAllReturnsToMain(t *testing.T) {
	f := &fakeServer{tasks: []solo.Task{{Text: "a"}}}
	eng, renderer, presenter := newTestEngine(t, f)
	eng.Store().SetView(state.ViewSettings)

	if _, err := eng.Dispatch(context.Background(), Command{Action: ActionResetAll}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := renderer.last().View; got != state.ViewMain {
		t.Fatalf("view after reset = %q, want main", got)
	}
	if ev, _ := presenter.Current(); ev.Body != "All data has been reset!" {
		t.Fatalf("presenter body = %q", ev.Body)
	}
}

func TestDispatch_EmptyInputSendsNothing(t *testing.T) {
	f := &fakeServer{}
	eng, _, _ := newTestEngine(t, f)

	for _, a := range []Action{ActionAddTask, ActionAddRule, ActionEditRule, ActionAddDiary, ActionAddPunishment, ActionAddShopItem} {
		_, err := eng.Dispatch(context.Background(), Command{Action: a, Text: "   "})
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Dispatch(%s) error = %v, want ErrEmptyInput", a, err)
		}
	}
	if f.gets.Load() != 0 {
		t.Fatalf("gets = %d, want 0", f.gets.Load())
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		cmd      Command
		endpoint string
	}{
		{Command{Action: ActionToggleTask, Index: 2}, "/tasks/toggle/2"},
		{Command{Action: ActionEditTask, Index: 1, Text: "x"}, "/tasks/edit/1"},
		{Command{Action: ActionDeleteTask, Index: 0}, "/tasks/delete/0"},
		{Command{Action: ActionAddRule, Text: "no sugar"}, "/nonneg/add"},
		{Command{Action: ActionEditRule, Index: 4, Text: "r"}, "/nonneg/edit/4"},
		{Command{Action: ActionDeleteRule, Index: 4}, "/nonneg/delete/4"},
		{Command{Action: ActionAddShopItem, Text: "Cheat meal", Price: 10}, "/shop/add"},
		{Command{Action: ActionBuyItem, ID: 9}, "/shop/buy/9"},
		{Command{Action: ActionDeleteShopItem, ID: 9}, "/shop/delete/9"},
		{Command{Action: ActionAddDiary, Text: "d"}, "/diary/add"},
		{Command{Action: ActionSaveSettings, Sounds: true}, "/settings"},
		{Command{Action: ActionAddPunishment, Text: "p"}, "/punishments/add"},
		{Command{Action: ActionDeletePunishment, Index: 3}, "/punishments/delete/3"},
		{Command{Action: ActionSetName, Text: "Jin"}, "/name"},
		{Command{Action: ActionResetAll}, "/reset"},
	}
	for _, tt := range tests {
		endpoint, _, err := route(tt.cmd)
		if err != nil {
			t.Fatalf("route(%s) error: %v", tt.cmd.Action, err)
		}
		if endpoint != tt.endpoint {
			t.Fatalf("route(%s) = %q, want %q", tt.cmd.Action, endpoint, tt.endpoint)
		}
	}

	_, payload, _ := route(Command{Action: ActionAddTask, Text: "Read", Deadline: "2024-01-01 10:00"})
	body := payload.(map[string]any)
	if body["coins"] != 5 || body["stat"] != "discipline" || body["deadline"] != "2024-01-01T10:00" {
		t.Fatalf("add task payload = %#v", body)
	}
}

func TestGreetingFor(t *testing.T) {
	if g := GreetingFor(solo.Snapshot{Name: "Jin"}); g.Text != "Hey Jin" || g.NeedsName {
		t.Fatalf("GreetingFor(Jin) = %#v", g)
	}
	if g := GreetingFor(solo.Snapshot{Name: "  "}); !g.NeedsName {
		t.Fatalf("GreetingFor(blank) = %#v, want name prompt", g)
	}
}

// blockingAPI holds FetchSnapshot until released so concurrent resyncs can
// be observed joining one flight.
type blockingAPI struct {
	fetches atomic.Int32
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingAPI) FetchSnapshot(ctx context.Context) (*solo.Snapshot, error) {
	b.fetches.Add(1)
	b.once.Do(func() { close(b.started) })
	<-b.release
	return &solo.Snapshot{}, nil
}
func (b *blockingAPI) Ping(context.Context) error { return nil }
func (b *blockingAPI) Post(context.Context, string, any) (solo.MutationResult, error) {
	return solo.MutationResult{Status: 200}, nil
}
func (b *blockingAPI) FetchShop(context.Context) ([]solo.ShopItem, error) { return nil, nil }

func TestResync_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	api := &blockingAPI{release: make(chan struct{}), started: make(chan struct{})}
	eng := New(api, &state.Store{}, Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = eng.Resync(context.Background())
	}()
	<-api.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = eng.Resync(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	close(api.release)
	wg.Wait()

	if n := api.fetches.Load(); n != 1 {
		t.Fatalf("fetches = %d, want 1", n)
	}
}

func TestResync_AfterMutationDoesNotJoinOlderFetch(t *testing.T) {
	api := &blockingAPI{release: make(chan struct{}), started: make(chan struct{})}
	eng := New(api, &state.Store{}, Options{})

	done := make(chan struct{})
	go func() {
		_ = eng.Resync(context.Background())
		close(done)
	}()
	<-api.started

	mutated := make(chan struct{})
	go func() {
		_, _ = eng.Mutate(context.Background(), solo.EndpointTasksAdd, nil)
		close(mutated)
	}()
	time.Sleep(20 * time.Millisecond)
	close(api.release)
	<-done
	<-mutated

	if n := api.fetches.Load(); n != 2 {
		t.Fatalf("fetches = %d, want 2 (post-mutation resync must fetch again)", n)
	}
}
