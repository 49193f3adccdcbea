// Package resync keeps the client consistent with the server by refetching
// the full snapshot after every write.
//
// # Overview
//
// There is no optimistic update and no partial patch. A mutation is one POST
// followed, whatever its outcome, by a resync: ping (ignored), GET
// /api/data, replace the store contents, derive the greeting, run the
// deadline scan and re-render the active view.
//
// # Commands
//
// The UI never calls endpoints directly. It builds a Command and passes it
// to Engine.Dispatch, which maps the Action to its endpoint and payload.
// Empty text inputs are rejected with ErrEmptyInput before any request.
//
// # Concurrency
//
// Resync calls are collapsed with singleflight, keyed by a counter that
// advances after every mutation. Two refreshes started between the same
// pair of mutations share one fetch; a resync issued after a mutation
// always performs its own fetch, so it cannot return pre-mutation data.
//
// # Error Handling
//
// A failed fetch keeps the previous snapshot and calls Renderer.Offline.
// A structured {"error"} in a mutation response is shown through the
// presenter and requires acknowledgment. Other error statuses are silent.
package resync
