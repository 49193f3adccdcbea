package notify

import (
	"context"
	"testing"
	"time"
)

func TestPresenter_LastShowWins(t *testing.T) {
	p := New()
	if p.State() != Hidden {
		t.Fatalf("State() = %v, want hidden", p.State())
	}

	p.Show(Event{Title: "first", RequiresAck: true})
	p.Show(Event{Title: "second", RequiresAck: false})

	ev, ok := p.Current()
	if !ok {
		t.Fatalf("Current() not shown after Show")
	}
	if ev.Title != "second" || ev.RequiresAck {
		t.Fatalf("Current() = %#v, want second event without ack requirement", ev)
	}

	p.Acknowledge()
	if _, ok := p.Current(); ok {
		t.Fatalf("Current() still shown after Acknowledge")
	}
}

func TestPresenter_DefaultsTitle(t *testing.T) {
	p := New()
	p.Show(Event{Body: "hello"})
	ev, _ := p.Current()
	if ev.Title != "Notice" {
		t.Fatalf("Title = %q, want Notice", ev.Title)
	}
}

func TestPresenter_ListenersSeeTransitions(t *testing.T) {
	p := New()
	var got []State
	p.Subscribe(func(s State, _ Event) { got = append(got, s) })

	p.Show(Event{Title: "a"})
	p.Show(Event{Title: "b"})
	p.Acknowledge()
	p.Acknowledge() // already hidden, no transition

	want := []State{Shown, Shown, Hidden}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
}

func TestPresenter_AutoHideIsOneShot(t *testing.T) {
	p := New()
	stop := p.StartAutoHide(context.Background(), 20*time.Millisecond)
	defer stop()

	p.Show(Event{Title: "stuck", RequiresAck: true})
	deadline := time.Now().Add(time.Second)
	for p.State() == Shown && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.State() != Hidden {
		t.Fatalf("State() = %v, want hidden after auto-hide", p.State())
	}

	p.Show(Event{Title: "later"})
	time.Sleep(60 * time.Millisecond)
	if p.State() != Shown {
		t.Fatalf("later event was hidden; auto-hide must fire only once")
	}
}

func TestPresenter_AutoHideStop(t *testing.T) {
	p := New()
	stop := p.StartAutoHide(context.Background(), 20*time.Millisecond)
	stop()
	p.Show(Event{Title: "kept"})
	time.Sleep(50 * time.Millisecond)
	if p.State() != Shown {
		t.Fatalf("State() = %v, want shown when auto-hide disarmed", p.State())
	}
}

func TestPresenter_AutoHideArmsOncePerPresenter(t *testing.T) {
	p := New()
	stop := p.StartAutoHide(context.Background(), time.Hour)
	defer stop()

	again := p.StartAutoHide(context.Background(), 20*time.Millisecond)
	defer again()

	p.Show(Event{Title: "kept"})
	time.Sleep(60 * time.Millisecond)
	if p.State() != Shown {
		t.Fatalf("State() = %v, want shown; second StartAutoHide must not arm a timer", p.State())
	}
}
