// Package app is the composition root for the solo client.
//
// # Overview
//
// This package wires configuration, the caching agent, the sync engine,
// the deadline scanner and the UI into one running program. Business logic
// lives in the domain packages; app only connects them.
//
// # Architecture
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read ~/.config/solo/config.toml
//	       ├─────> prefs.Load()         Theme and last view
//	       ├─────> NewRuntime()         Agent, client, store, engine, scanner
//	       ├─────> ui.New()             Registered as the engine's renderer
//	       ├─────> StartAutoHide(8s)    One-shot notification timeout
//	       ├─────> ArmSafetyNet(9s)     Re-enable input, hide stuck modal
//	       ├─────> Scheduler            gocron deadline scan every 30s
//	       ├─────> Engine.Resync()      Initial load (background)
//	       └─────> ui.Run()             Blocks until quit
//
// # Caching Agent
//
// With [agent] enabled (the default) the HTTP client's transport is an
// in-process agent.Agent. Reads of /api/data are copied into the current
// cache generation, so a later resync with the server down renders the
// last cached snapshot instead of the offline placeholder. The standalone
// proxy form lives in `solo agent`.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Unknown caching strategy or cache driver (an unusable cache
//     directory falls back to an in-memory store)
//   - Scheduler creation failure
//
// Everything after startup is recoverable: failed resyncs mark the store
// offline and keep the previous data, failed overdue reports are logged.
package app
