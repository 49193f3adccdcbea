// Package ui implements the solo terminal interface with Bubble Tea.
//
// # Overview
//
// The UI is a dock of eight views (status, quests, non-negotiables, shop,
// diary, stats, settings, logs) over one state.Store. It never talks to the
// server directly for mutations: every action becomes a resync.Command that
// the sync engine posts and follows with a full snapshot fetch.
//
// # Architecture
//
//	resync.Engine ──Render/Offline──> App.program.Send ──> Model.Update
//	Model key handler ──tea.Cmd──> Engine.Dispatch ──> dispatchDoneMsg
//	notify.Presenter ──Subscribe──> modalChangedMsg (redraw only)
//
// App adapts the program to resync.Renderer. Render and Offline block until
// the event loop takes the message, so the engine must never be called
// synchronously from Update; Model always goes through a tea.Cmd.
//
// # Input Locking
//
// While a mutation is in flight the model is busy and further mutations are
// ignored. The dispatch result clears the flag; so does enableInputMsg,
// which the startup safety net sends in case a request never returns.
//
// # Modal
//
// The presenter's current event is drawn over everything else. Events that
// require acknowledgment close only on enter, esc or space; others close on
// any key.
//
// # Views
//
//   - Shop loads its catalog from /api/shop each time it is opened and
//     after every buy, add or delete.
//   - Logs tails the client's slog file through internal/logtail and
//     re-reads it on the 30 second clock while open.
//   - Quests show a live countdown from internal/deadline.
package ui
