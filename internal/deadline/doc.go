// Package deadline detects missed task deadlines.
//
// A Scanner runs after every resync and on a fixed 30 second period. For
// each task whose deadline parses and lies strictly before now, it claims
// the task's notified flag in the state store, picks a punishment from the
// snapshot, hands one event to the presenter and reports the miss upstream
// when the task has a server id. A claimed flag is never released during the
// session, so a task notifies at most once however often the scan runs.
//
// Deadlines without a zone are read in the scanner's location. Unparseable
// values are skipped rather than treated as overdue.
package deadline
