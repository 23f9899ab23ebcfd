package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCleaner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakeCleaner) CleanupOldLookupRuns(cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 3, f.err
}

func TestRunOnce(t *testing.T) {
	fc := &fakeCleaner{}
	r := NewRetention(fc, 30, "")
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	n, err := r.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	want := time.Date(2026, 9, 18, 12, 0, 0, 0, time.UTC)
	if !fc.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", fc.cutoff, want)
	}
	if r.schedule != DefaultSchedule {
		t.Errorf("schedule = %q, want default", r.schedule)
	}
}

func TestRunOnce_Error(t *testing.T) {
	r := NewRetention(&fakeCleaner{err: errors.New("locked")}, 1, "")
	if _, err := r.RunOnce(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	r := NewRetention(&fakeCleaner{}, 1, "not a schedule")
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	fc := &fakeCleaner{}
	r := NewRetention(fc, 1, "@every 10ms")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(1100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
