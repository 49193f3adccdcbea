// Package notify implements the single modal notification slot.
//
// The presenter is a two-state machine (hidden, shown). There is no queue:
// a later Show replaces whatever is on screen, including its acknowledgment
// requirement.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the presenter's visibility.
type State int

const (
	Hidden State = iota
	Shown
)

func (s State) String() string {
	if s == Shown {
		return "shown"
	}
	return "hidden"
}

// Event is one notification.
type Event struct {
	Title       string
	Body        string
	RequiresAck bool
}

// Listener observes state transitions. It is called without the presenter
// lock held.
type Listener func(State, Event)

// Presenter is safe for concurrent use.
type Presenter struct {
	mu        sync.Mutex
	state     State
	current   Event
	listeners []Listener
	autoHide  sync.Once
}

// New returns a hidden presenter.
func New() *Presenter {
	return &Presenter{}
}

// Subscribe registers l for every future transition.
func (p *Presenter) Subscribe(l Listener) {
	if l == nil {
		return
	}
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// Show moves to Shown, overwriting any visible event.
func (p *Presenter) Show(ev Event) {
	if ev.Title == "" {
		ev.Title = "Notice"
	}
	p.transition(Shown, ev)
}

// Acknowledge hides the current event.
func (p *Presenter) Acknowledge() {
	p.transition(Hidden, Event{})
}

// Current returns the visible event, if any.
func (p *Presenter) Current() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.state == Shown
}

// State returns the current visibility.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// StartAutoHide arms the one-shot timeout that forces the modal hidden after
// d. Only the first call per presenter arms a timer; later calls return a
// no-op. The returned func disarms it.
func (p *Presenter) StartAutoHide(ctx context.Context, d time.Duration) func() {
	stop := func() {}
	p.autoHide.Do(func() {
		timer := time.AfterFunc(d, func() {
			if ctx.Err() != nil {
				return
			}
			if p.State() == Shown {
				slog.Debug("hiding stuck notification", "after", d)
				p.Acknowledge()
			}
		})
		stop = func() { timer.Stop() }
	})
	return stop
}

func (p *Presenter) transition(next State, ev Event) {
	p.mu.Lock()
	if next == Hidden && p.state == Hidden {
		p.mu.Unlock()
		return
	}
	p.state = next
	p.current = ev
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l(next, ev)
	}
}
