// Package agent implements the offline caching agent that sits between
// clients and the solo server.
//
// # Overview
//
// The agent intercepts HTTP requests either as an http.RoundTripper below
// the API client or as a reverse proxy in front of the app shell (`solo
// agent`). It keeps app-shell assets and API reads in versioned cache
// generations so the client keeps working when the server is unreachable.
//
// # Strategies
//
// One Strategy governs an agent:
//
//   - StaleWhilePopulate (default): install warms every manifest asset,
//     activate deletes every generation but the current one, fetch goes to
//     the network and copies same-origin 200 responses into the cache. With
//     no network the cache answers; on a miss the caller gets an empty 503.
//   - NetworkFirst: install does nothing and skips waiting, activate deletes
//     every generation, fetch mirrors all responses. With no network the
//     cache answers; on a miss the network error is returned.
//
// Only GET requests are cached. Cache read and write failures are logged and
// counted but never change what the caller receives.
//
// # Lifecycle
//
//	Install(m) ──> installing ──> waiting ──(no active | skip waiting)──> activating ──> active
//	                                 │
//	                                 └── SKIP_WAITING control message ──┘
//
// Activation claims clients at once: the next request uses the new worker.
// Control messages arrive over HTTP (POST /__agent/control) or NATS
// (subject solo.agent.control). A ManifestWatcher installs a new worker
// when the config file's asset version changes.
package agent
