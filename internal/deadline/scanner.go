package deadline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/subhaanfazeel/solo/internal/metrics"
	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

// Title is the notification title for a missed deadline.
const Title = "Missed deadline!"

// Interval is the default period between scans.
const Interval = 30 * time.Second

// Presenter receives overdue events.
type Presenter interface {
	Show(notify.Event)
}

// Reporter receives the best-effort overdue report.
type Reporter interface {
	Post(ctx context.Context, endpoint string, payload any) (solo.MutationResult, error)
}

// Picker chooses an index in [0, n).
type Picker interface {
	IntN(n int) int
}

// Options configure a Scanner. Zero values use wall-clock time, the local
// zone and an unseeded random source.
type Options struct {
	Now      func() time.Time
	Picker   Picker
	Location *time.Location
	Reporter Reporter
	Recorder metrics.Recorder
}

// Scanner detects missed deadlines and raises one notification per task per
// session.
type Scanner struct {
	store     *state.Store
	presenter Presenter
	reporter  Reporter
	recorder  metrics.Recorder
	now       func() time.Time
	loc       *time.Location

	pickMu sync.Mutex
	picker Picker
}

// NewScanner builds a Scanner over store. presenter may be nil when only the
// returned events are of interest.
func NewScanner(store *state.Store, presenter Presenter, opts Options) *Scanner {
	s := &Scanner{
		store:     store,
		presenter: presenter,
		reporter:  opts.Reporter,
		recorder:  opts.Recorder,
		now:       opts.Now,
		loc:       opts.Location,
		picker:    opts.Picker,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.picker == nil {
		s.picker = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	return s
}

// Scan evaluates every task in snap against the current time. Each newly
// overdue task produces one event, which is handed to the presenter in task
// order; only the last is guaranteed to stay visible.
func (s *Scanner) Scan(ctx context.Context, snap solo.Snapshot) []notify.Event {
	now := s.now()
	var events []notify.Event
	for _, task := range snap.Tasks {
		if !task.HasDeadline() || s.store.Notified(task.Key()) {
			continue
		}
		due, err := Parse(task.Deadline, s.loc)
		if err != nil {
			slog.Debug("skipping unparseable deadline", "task", task.Text, "deadline", task.Deadline)
			continue
		}
		if !due.Before(now) {
			continue
		}
		if !s.store.MarkNotified(task.Key()) {
			continue
		}

		ev := notify.Event{
			Title:       Title,
			Body:        s.body(task, snap.Punishments),
			RequiresAck: true,
		}
		events = append(events, ev)
		s.recorder.IncOverdue()
		slog.Info("deadline missed", "task", task.Text, "deadline", task.Deadline)
		if s.presenter != nil {
			s.presenter.Show(ev)
		}
		s.report(ctx, task)
	}
	return events
}

// ScanStore runs Scan against the store's current snapshot.
func (s *Scanner) ScanStore(ctx context.Context) []notify.Event {
	snap := s.store.Snapshot()
	if !snap.HasData {
		return nil
	}
	return s.Scan(ctx, snap.Data)
}

func (s *Scanner) body(task solo.Task, punishments []string) string {
	body := "You missed the task: " + task.Text
	if p, ok := s.pick(punishments); ok {
		body += "  Your punishment is: " + p
	}
	return body
}

func (s *Scanner) pick(options []string) (string, bool) {
	if len(options) == 0 {
		return "", false
	}
	s.pickMu.Lock()
	idx := s.picker.IntN(len(options))
	s.pickMu.Unlock()
	return options[idx], true
}

func (s *Scanner) report(ctx context.Context, task solo.Task) {
	if s.reporter == nil || task.ID == "" {
		return
	}
	if _, err := s.reporter.Post(ctx, solo.TaskMarkOverdue(task.ID), nil); err != nil {
		slog.Debug("overdue report failed", "task_id", task.ID, "error", err)
	}
}
