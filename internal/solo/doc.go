// Package solo provides an HTTP client for the solo tracker server API.
//
// # Overview
//
// The server owns all application state. The client never patches that state
// locally: it sends one mutation, then fetches the whole snapshot again. This
// package is the narrow request/response contract between the two.
//
// # Architecture
//
//   - client.go: HTTP client, request construction and response handling
//   - types.go: data structures mirroring the server's JSON schema and the
//     endpoint builders for indexed routes
//
// # Client Usage
//
//	client, err := solo.NewClient("127.0.0.1:8000", solo.ClientOptions{})
//	if err != nil {
//		return err
//	}
//
//	snap, err := client.FetchSnapshot(ctx)
//	if errors.Is(err, solo.ErrOffline) {
//		// show the offline placeholder, keep previous state
//	}
//
//	res, err := client.Post(ctx, solo.EndpointTasksAdd, map[string]any{"task": "Read"})
//	if err == nil && res.Failed() {
//		// server returned {"error": "..."}
//	}
//
// # API Endpoints
//
//   - GET  /api/data   full snapshot, wrapped as {"data": {...}}
//   - POST /api/ping   liveness ping, response ignored
//   - GET  /api/shop   catalog, fetched when the shop view opens
//   - POST /api/...    mutations; the body is JSON, the response is ignored
//     except for an optional {"error": "..."} field
//
// # Error Handling
//
// Transport failures (no response) wrap ErrOffline. For reads, an HTTP status
// of 400 or above is an error. For mutations it is not: Post reports the
// status and any structured error message in MutationResult, because a
// failed mutation is still followed by a resync that shows the real state.
//
// # Transport
//
// ClientOptions.Transport lets the caching agent sit underneath the client
// as an http.RoundTripper. The client does not know whether a response came
// from the network, the cache or a synthesized fallback.
package solo
