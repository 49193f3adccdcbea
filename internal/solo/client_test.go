package solo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultServer {
		t.Fatalf("host = %q, want %q", u.Host, defaultServer)
	}

	u, err = parseBaseURL("https://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchSnapshotAndShop(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/data":
			_, _ = w.Write([]byte(`{"data":{"name":"Sung","tasks":[{"id":7,"task":"Read","deadline":"2020-01-01 00:00","coins":5,"stat":"discipline"}],"punishments":["10 push-ups"],"shop":{"coins":12}}}`))
		case "/api/shop":
			_ = json.NewEncoder(w).Encode(ShopResponse{Catalog: []ShopItem{{ID: 1, Name: "Cheat Meal", Price: 20}}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	snap, err := c.FetchSnapshot(ctx)
	if err != nil {
		t.Fatalf("FetchSnapshot returned error: %v", err)
	}
	if snap.Name != "Sung" || len(snap.Tasks) != 1 || snap.Shop.Coins != 12 {
		t.Fatalf("FetchSnapshot = %#v, want name, one task and 12 coins", snap)
	}
	if snap.Tasks[0].ID != "7" {
		t.Fatalf("task id = %q, want numeric id decoded as \"7\"", snap.Tasks[0].ID)
	}

	items, err := c.FetchShop(ctx)
	if err != nil {
		t.Fatalf("FetchShop returned error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Cheat Meal" {
		t.Fatalf("FetchShop = %#v, want Cheat Meal", items)
	}
}

func TestClient_PostSurfacesStructuredErrors(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		switch r.URL.Path {
		case "/api/tasks/add":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"tasks":[]}`))
		case "/api/shop/buy/3":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Not enough coins"}`))
		case "/api/tasks/delete/9":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	res, err := c.Post(context.Background(), EndpointTasksAdd, map[string]any{"task": "Read", "coins": 5})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if res.Failed() {
		t.Fatalf("Post result = %#v, want no error", res)
	}
	if gotBody["task"] != "Read" {
		t.Fatalf("server saw body %v, want task=Read", gotBody)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}

	res, err = c.Post(context.Background(), ShopBuy(3), nil)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if res.Error != "Not enough coins" || res.Status != http.StatusBadRequest {
		t.Fatalf("Post result = %#v, want structured error", res)
	}

	res, err = c.Post(context.Background(), TaskDelete(9), nil)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if res.Failed() {
		t.Fatalf("Post result = %#v, want unstructured failure to stay silent", res)
	}
}

func TestClient_TransportFailureIsOffline(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", ClientOptions{Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchSnapshot(context.Background())
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("FetchSnapshot error = %v, want ErrOffline", err)
	}
	_, err = c.Post(context.Background(), EndpointReset, nil)
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("Post error = %v, want ErrOffline", err)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/data":
			_, _ = w.Write([]byte("{not-json"))
		case "/api/shop":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchSnapshot(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchSnapshot error = %v, want decode response error", err)
	}

	_, err = c.FetchShop(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchShop error = %v, want status 500 error", err)
	}
}
