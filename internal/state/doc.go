// Package state provides thread-safe client state for the solo tracker.
//
// # Overview
//
// The Store holds the last snapshot fetched from the server, the active
// view and the per-session overdue flags. It is the coordination point
// where resync results meet UI rendering and deadline scans.
//
// # Architecture
//
//	Writers:                        Readers:
//	┌──────────────────┐           ┌──────────────────┐
//	│ resync.Engine    │           │ ui.Model         │
//	│   store.Update() │──────────→│ store.Snapshot() │
//	│ deadline.Scanner │  (mutex)  │ deadline.Scanner │
//	│   MarkNotified() │           │                  │
//	└──────────────────┘           └──────────────────┘
//
// # Core Types
//
// Store:
//   - Thread-safe container, zero value ready to use
//   - Update replaces the snapshot wholesale; there is no merge
//   - A failed update keeps the previous data and records the error
//
// Snapshot:
//   - Value copy of the state at a point in time
//   - Contains the server data, active view, timestamps and error info
//
// # Overdue Flags
//
// The notified flag lives in the store keyed by solo.Task.Key, not on the
// task record, so it survives the snapshot replacement that follows every
// mutation. MarkNotified is a test-and-set under the write lock.
//
// # Error Handling
//
// Update(nil, err) increments ConsecutiveFailures and keeps the data the UI
// already shows. The next successful Update clears the error.
package state
