package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/subhaanfazeel/solo/internal/solo"
)

// View selects which dock panel is active.
type View string

const (
	ViewMain     View = "main"
	ViewTasks    View = "tasks"
	ViewNonNeg   View = "nonneg"
	ViewShop     View = "shop"
	ViewDiary    View = "diary"
	ViewStats    View = "stats"
	ViewSettings View = "settings"
	ViewLogs     View = "logs"
)

// Views lists the dock in display order.
var Views = []View{ViewMain, ViewTasks, ViewNonNeg, ViewShop, ViewDiary, ViewStats, ViewSettings, ViewLogs}

// ParseView maps a name to a View, defaulting to main.
func ParseView(name string) View {
	for _, v := range Views {
		if string(v) == name {
			return v
		}
	}
	return ViewMain
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Data                solo.Snapshot
	HasData             bool
	View                View
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the last resync failed.
func (s Snapshot) IsOffline() bool {
	return s.LastError != nil
}

// Store holds the client-side application state for one session. It is
// passed explicitly to the sync engine, the scanner and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	notified map[string]bool
}

// Update replaces the stored snapshot wholesale. When err is non-nil the
// previous data is kept but the error is recorded for visibility.
func (s *Store) Update(data *solo.Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if data != nil {
		s.snapshot.Data = data.Clone()
		s.snapshot.HasData = true
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Data = s.snapshot.Data.Clone()
	if snap.View == "" {
		snap.View = ViewMain
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// SetView changes the active panel.
func (s *Store) SetView(v View) {
	s.mu.Lock()
	s.snapshot.View = v
	s.mu.Unlock()
}

// View returns the active panel.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.View == "" {
		return ViewMain
	}
	return s.snapshot.View
}

// MarkNotified sets the overdue flag for key and reports whether this call
// set it. The check and the write happen under one lock, so two concurrent
// scans cannot both claim the same task.
func (s *Store) MarkNotified(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notified == nil {
		s.notified = make(map[string]bool)
	}
	if s.notified[key] {
		return false
	}
	s.notified[key] = true
	return true
}

// Notified reports whether key has already produced an overdue notification
// in this session.
func (s *Store) Notified(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notified[key]
}
