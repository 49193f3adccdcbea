package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subhaanfazeel/solo/internal/cachestore"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var errNetwork = errors.New("network down")

// switchable is a transport that can be taken offline mid-test.
type switchable struct {
	offline atomic.Bool
	next    http.RoundTripper
	calls   atomic.Int32
}

func (s *switchable) RoundTrip(r *http.Request) (*http.Response, error) {
	s.calls.Add(1)
	if s.offline.Load() {
		return nil, errNetwork
	}
	return s.next.RoundTrip(r)
}

func newOrigin(t *testing.T) (*httptest.Server, *url.URL) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "asset:"+r.URL.RequestURI())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return srv, u
}

func get(t *testing.T, rt http.RoundTripper, u string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	require.NoError(t, err)
	return rt.RoundTrip(req)
}

func TestStaleWhilePopulate_InstallWarmsAndActivates(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})

	require.NoError(t, a.Install(context.Background(), DefaultManifest()))

	st := a.Status()
	require.NotNil(t, st.Active)
	assert.Equal(t, "solo-cache-v11.7", st.Active.Generation)
	assert.Nil(t, st.Waiting)

	c, err := store.Open(context.Background(), "solo-cache-v11.7")
	require.NoError(t, err)
	keys, err := c.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, len(DefaultManifest().Assets))
	assert.Contains(t, keys, srv.URL+"/static/app.js?v11.7")
}

func TestStaleWhilePopulate_InstallSurvivesFailingAssets(t *testing.T) {
	_, origin := newOrigin(t)
	a := New(Options{Origin: origin, Next: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errNetwork
	})})
	require.NoError(t, a.Install(context.Background(), DefaultManifest()))
	assert.NotNil(t, a.Status().Active)
}

func TestStaleWhilePopulate_ActivationPurgesOtherGenerations(t *testing.T) {
	ctx := context.Background()
	store := cachestore.NewMemory(0)
	for _, name := range []string{"solo-cache-v1", "solo-cache-v11.7", "other"} {
		_, err := store.Open(ctx, name)
		require.NoError(t, err)
	}

	env := Env{Store: store, Manifest: DefaultManifest()}
	require.NoError(t, StaleWhilePopulate{}.Activate(ctx, env))

	names, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo-cache-v11.7"}, names)
}

func TestNetworkFirst_ActivationPurgesEverything(t *testing.T) {
	ctx := context.Background()
	store := cachestore.NewMemory(0)
	for _, name := range []string{"solo-system-cache-v8", "solo-cache-v11.7"} {
		_, err := store.Open(ctx, name)
		require.NoError(t, err)
	}
	env := Env{Store: store, Manifest: NewManifest("solo-cache", "v11.7", nil)}
	require.NoError(t, NetworkFirst{}.Activate(ctx, env))

	names, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStaleWhilePopulate_BodyIdenticalToCache(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})
	require.NoError(t, a.Install(context.Background(), NewManifest("", "", []string{"/"})))

	resp, err := get(t, a, srv.URL+"/api/data")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	entry, ok, err := store.Match(context.Background(), srv.URL+"/api/data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bytes.Equal(body, entry.Body), "caller body %q != cached body %q", body, entry.Body)
	assert.Equal(t, "asset:/api/data", string(body))
}

func TestStaleWhilePopulate_SkipsNon200AndCrossOrigin(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})
	require.NoError(t, a.Install(context.Background(), NewManifest("", "", []string{"/"})))

	resp, err := get(t, a, srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_, ok, _ := store.Match(context.Background(), srv.URL+"/missing")
	assert.False(t, ok)

	foreign := strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)
	if foreign != srv.URL {
		resp, err = get(t, a, foreign+"/x")
		require.NoError(t, err)
		_ = resp.Body.Close()
		_, ok, _ = store.Match(context.Background(), foreign+"/x")
		assert.False(t, ok, "cross-origin responses are not cached")
	}
}

func TestStaleWhilePopulate_OfflineServesCacheThen503(t *testing.T) {
	srv, origin := newOrigin(t)
	net := &switchable{next: srv.Client().Transport}
	a := New(Options{Origin: origin, Next: net})
	require.NoError(t, a.Install(context.Background(), NewManifest("", "", []string{"/"})))

	resp, err := get(t, a, srv.URL+"/static/app.js")
	require.NoError(t, err)
	_ = resp.Body.Close()

	net.offline.Store(true)

	resp, err = get(t, a, srv.URL+"/static/app.js")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "asset:/static/app.js", string(body))

	resp, err = get(t, a, srv.URL+"/never-seen")
	require.NoError(t, err, "a miss while offline must not surface an error")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "503 Service Unavailable", resp.Status)
	body, _ = io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestStaleWhilePopulate_NonGetPassesThrough(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})
	require.NoError(t, a.Install(context.Background(), NewManifest("", "", []string{"/"})))

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/tasks/add", strings.NewReader("{}"))
	require.NoError(t, err)
	resp, err := a.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	_, ok, _ := store.Match(context.Background(), srv.URL+"/api/tasks/add")
	assert.False(t, ok)
}

func TestNetworkFirst_MissReturnsNetworkError(t *testing.T) {
	srv, origin := newOrigin(t)
	net := &switchable{next: srv.Client().Transport}
	a := New(Options{Strategy: NetworkFirst{}, Origin: origin, Next: net})
	require.NoError(t, a.Install(context.Background(), DefaultManifest()))

	resp, err := get(t, a, srv.URL+"/missing")
	require.NoError(t, err)
	_ = resp.Body.Close()

	net.offline.Store(true)

	resp, err = get(t, a, srv.URL+"/missing")
	require.NoError(t, err, "mirrored 404 is served from cache")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = get(t, a, srv.URL+"/nothing")
	assert.ErrorIs(t, err, errNetwork)
}

func TestAgent_WaitingWorkerActivatesOnSkipWaiting(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})
	ctx := context.Background()

	assert.ErrorIs(t, a.SkipWaiting(ctx), ErrNoWaitingWorker)

	require.NoError(t, a.Install(ctx, NewManifest("", "v1", []string{"/"})))
	require.NoError(t, a.Install(ctx, NewManifest("", "v2", []string{"/"})))

	st := a.Status()
	require.NotNil(t, st.Waiting)
	assert.Equal(t, "solo-cache-v1", st.Active.Generation)
	assert.Equal(t, "solo-cache-v2", st.Waiting.Generation)
	assert.Equal(t, "waiting", st.Waiting.Phase)

	require.NoError(t, a.HandleControl(ctx, []byte(`{"type":"SKIP_WAITING"}`)))
	st = a.Status()
	assert.Equal(t, "solo-cache-v2", st.Active.Generation)
	assert.Nil(t, st.Waiting)

	names, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo-cache-v2"}, names)

	assert.ErrorIs(t, a.HandleControl(ctx, []byte(`{"type":"NOPE"}`)), ErrUnknownControl)
	assert.Error(t, a.HandleControl(ctx, []byte(`not json`)))
}

func TestAgent_NetworkFirstSkipsWaiting(t *testing.T) {
	srv, origin := newOrigin(t)
	a := New(Options{Strategy: NetworkFirst{}, Origin: origin, Next: srv.Client().Transport})
	ctx := context.Background()
	require.NoError(t, a.Install(ctx, NewManifest("", "v1", nil)))
	require.NoError(t, a.Install(ctx, NewManifest("", "v2", nil)))
	st := a.Status()
	assert.Equal(t, "solo-cache-v2", st.Active.Generation)
	assert.Nil(t, st.Waiting)
}

func TestAgent_ReinstallSameVersionIsNoop(t *testing.T) {
	srv, origin := newOrigin(t)
	a := New(Options{Origin: origin, Next: srv.Client().Transport})
	ctx := context.Background()
	require.NoError(t, a.Install(ctx, DefaultManifest()))
	id := a.Status().Active.ID
	require.NoError(t, a.Install(ctx, DefaultManifest()))
	assert.Equal(t, id, a.Status().Active.ID)
	assert.Nil(t, a.Status().Waiting)
}

func TestAgent_NoActiveWorkerPassesThrough(t *testing.T) {
	srv, origin := newOrigin(t)
	store := cachestore.NewMemory(0)
	a := New(Options{Store: store, Origin: origin, Next: srv.Client().Transport})
	resp, err := get(t, a, srv.URL+"/x")
	require.NoError(t, err)
	_ = resp.Body.Close()
	names, _ := store.Keys(context.Background())
	assert.Empty(t, names)
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyStaleWhilePopulate, s.Name())

	s, err = NewStrategy("network-first")
	require.NoError(t, err)
	assert.Equal(t, StrategyNetworkFirst, s.Name())

	_, err = NewStrategy("cache-only")
	assert.Error(t, err)
}

func TestManifest(t *testing.T) {
	m := DefaultManifest()
	assert.Equal(t, "solo-cache-v11.7", m.CacheName())
	assert.Equal(t, []string{
		"/",
		"/static/index.html?v11.7",
		"/static/styles.css?v11.7",
		"/static/app.js?v11.7",
		"/static/sw-register.js?v11.7",
		"/static/manifest.json",
		"/static/icon-192.svg",
		"/static/icon-512.svg",
	}, m.Paths())

	custom := NewManifest("solo-system-cache", "v9", []string{"/", "/app.js?v", " "})
	assert.Equal(t, "solo-system-cache-v9", custom.CacheName())
	assert.Equal(t, []string{"/", "/app.js?v9"}, custom.Paths())

	origin, _ := url.Parse("http://127.0.0.1:8000")
	urls := custom.URLs(origin)
	require.Len(t, urls, 2)
	assert.Equal(t, "http://127.0.0.1:8000/app.js?v9", urls[1].String())
}
