package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_RunsScanPeriodically(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	var runs atomic.Int32
	id, err := s.ScheduleScan(context.Background(), 20*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	if err != nil {
		t.Fatalf("ScheduleScan: %v", err)
	}
	if id == "" {
		t.Fatalf("ScheduleScan returned empty job id")
	}

	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if runs.Load() < 2 {
		t.Fatalf("scan ran %d times, want at least 2", runs.Load())
	}
}

func TestScheduler_SkipsAfterCancel(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	if _, err := s.ScheduleScan(ctx, 10*time.Millisecond, func(context.Context) { runs.Add(1) }); err != nil {
		t.Fatalf("ScheduleScan: %v", err)
	}
	s.Start()
	time.Sleep(60 * time.Millisecond)
	_ = s.Stop()
	if runs.Load() != 0 {
		t.Fatalf("scan ran %d times after cancel, want 0", runs.Load())
	}
}
