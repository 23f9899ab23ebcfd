package widget

import (
	"context"
	"sync"
	"testing"

	"github.com/lox/cityweather/internal/lookup"
	"github.com/lox/cityweather/internal/models"
)

type lookerFunc func(ctx context.Context, city string) lookup.Outcome

func (f lookerFunc) Lookup(ctx context.Context, city string) lookup.Outcome { return f(ctx, city) }

func TestApply(t *testing.T) {
	cur := &models.CurrentConditions{Name: "London"}
	fc := &models.HourlyForecast{Time: []string{"2026-10-18T00:00"}}

	tests := []struct {
		name         string
		out          lookup.Outcome
		wantError    bool
		wantCurrent  bool
		wantForecast bool
	}{
		{"success", lookup.Outcome{Kind: lookup.KindSuccess, Current: cur, Forecast: fc}, false, true, true},
		{"partial", lookup.Outcome{Kind: lookup.KindPartialSuccess, Current: cur}, false, true, false},
		{"failure", lookup.Outcome{Kind: lookup.KindFailure}, true, false, false},
		{"failure ignores stray data", lookup.Outcome{Kind: lookup.KindFailure, Current: cur, Forecast: fc}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Apply("London", tt.out)
			if st.Error != tt.wantError {
				t.Errorf("Error = %v, want %v", st.Error, tt.wantError)
			}
			if (st.Current != nil) != tt.wantCurrent {
				t.Errorf("Current present = %v, want %v", st.Current != nil, tt.wantCurrent)
			}
			if (st.Forecast != nil) != tt.wantForecast {
				t.Errorf("Forecast present = %v, want %v", st.Forecast != nil, tt.wantForecast)
			}
			if st.Query != "London" {
				t.Errorf("Query = %q", st.Query)
			}
		})
	}
}

func TestSubmit_ReplacesPreviousResult(t *testing.T) {
	w := New(lookerFunc(func(ctx context.Context, city string) lookup.Outcome {
		if city == "London" {
			return lookup.Outcome{Kind: lookup.KindSuccess, Current: &models.CurrentConditions{Name: "London"}, Forecast: &models.HourlyForecast{}}
		}
		return lookup.Outcome{Kind: lookup.KindFailure}
	}))

	st := w.Submit(context.Background(), "London")
	if st.Error || st.Current == nil || st.Forecast == nil {
		t.Fatalf("first submit state = %+v", st)
	}

	st = w.Submit(context.Background(), "Zzzznotacity")
	if !st.Error || st.Current != nil || st.Forecast != nil {
		t.Fatalf("second submit state = %+v", st)
	}
	if got := w.Snapshot(); got.Query != "Zzzznotacity" || !got.Error {
		t.Errorf("Snapshot = %+v", got)
	}
}

func TestSubmit_ClearsResultsWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	w := New(lookerFunc(func(ctx context.Context, city string) lookup.Outcome {
		calls++
		if calls == 2 {
			close(started)
			<-release
		}
		return lookup.Outcome{Kind: lookup.KindSuccess, Current: &models.CurrentConditions{Name: city}, Forecast: &models.HourlyForecast{}}
	}))
	w.Submit(context.Background(), "London")

	done := make(chan State)
	go func() { done <- w.Submit(context.Background(), "Paris") }()
	<-started

	mid := w.Snapshot()
	if mid.Current != nil || mid.Forecast != nil {
		t.Errorf("results not cleared while lookup in flight: %+v", mid)
	}
	if mid.Query != "Paris" {
		t.Errorf("Query = %q, want Paris", mid.Query)
	}

	close(release)
	if st := <-done; st.Current == nil || st.Current.Name != "Paris" {
		t.Errorf("final state = %+v", st)
	}
}

func TestSubmit_StaleOutcomeDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	w := New(lookerFunc(func(ctx context.Context, city string) lookup.Outcome {
		if city == "Slowtown" {
			close(slowStarted)
			<-releaseSlow
		}
		return lookup.Outcome{Kind: lookup.KindSuccess, Current: &models.CurrentConditions{Name: city}, Forecast: &models.HourlyForecast{}}
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	var slowState State
	go func() {
		defer wg.Done()
		slowState = w.Submit(context.Background(), "Slowtown")
	}()
	<-slowStarted

	fast := w.Submit(context.Background(), "Fastville")
	if fast.Current == nil || fast.Current.Name != "Fastville" {
		t.Fatalf("fast state = %+v", fast)
	}

	close(releaseSlow)
	wg.Wait()

	if slowState.Current == nil || slowState.Current.Name != "Fastville" {
		t.Errorf("slow submit returned %+v, want the newer Fastville state", slowState)
	}
	if got := w.Snapshot(); got.Current == nil || got.Current.Name != "Fastville" {
		t.Errorf("Snapshot = %+v, stale outcome overwrote newer one", got)
	}
}
