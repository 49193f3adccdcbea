package agent

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
)

// Control and status paths served by Handler in front of the proxied app.
const (
	ControlPath = "/__agent/control"
	StatusPath  = "/__agent/status"
	MetricsPath = "/metrics"
)

const maxControlBody = 4 << 10

// NewHandler returns an http.Handler that reverse-proxies the app shell at
// the agent's origin through the agent, and serves the control, status and
// (when metrics is non-nil) metrics endpoints.
func NewHandler(a *Agent, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	if a.origin != nil {
		proxy := httputil.NewSingleHostReverseProxy(a.origin)
		proxy.Transport = a
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Warn("proxy request failed", "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		}
		mux.Handle("/", proxy)
	}

	mux.HandleFunc("POST "+ControlPath, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxControlBody))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		err = a.HandleControl(r.Context(), raw)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrNoWaitingWorker):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	})

	mux.HandleFunc("GET "+StatusPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(a.Status()); err != nil {
			slog.Debug("encode status", "error", err)
		}
	})

	if metrics != nil {
		mux.Handle("GET "+MetricsPath, metrics)
	}
	return mux
}
