// Package widget holds the state behind one city-weather widget and applies
// lookup outcomes to it.
package widget

import (
	"context"
	"sync"

	"github.com/lox/cityweather/internal/lookup"
	"github.com/lox/cityweather/internal/metrics"
	"github.com/lox/cityweather/internal/models"
)

// State is everything the view needs to render the widget.
type State struct {
	Query    string
	Current  *models.CurrentConditions
	Forecast *models.HourlyForecast
	Error    bool
	Kind     lookup.Kind
}

// Apply returns the state that results from an outcome for query.
func Apply(query string, out lookup.Outcome) State {
	st := State{Query: query, Kind: out.Kind}
	switch out.Kind {
	case lookup.KindSuccess:
		st.Current = out.Current
		st.Forecast = out.Forecast
	case lookup.KindPartialSuccess:
		st.Current = out.Current
	default:
		st.Error = true
	}
	return st
}

type Looker interface {
	Lookup(ctx context.Context, city string) lookup.Outcome
}

// Widget serialises updates to a State. Every Submit is tagged with a
// sequence number and only the most recently started lookup may write its
// outcome.
type Widget struct {
	looker Looker

	mu    sync.Mutex
	seq   uint64
	state State
}

func New(looker Looker) *Widget {
	return &Widget{looker: looker}
}

// Submit runs a lookup for query and returns the resulting state. Results
// are cleared as soon as the lookup starts. If another Submit starts before
// this one finishes, this outcome is dropped and the returned state is
// whatever the widget holds at that point.
func (w *Widget) Submit(ctx context.Context, query string) State {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.state.Query = query
	w.state.Current = nil
	w.state.Forecast = nil
	w.mu.Unlock()

	out := w.looker.Lookup(ctx, query)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.seq {
		metrics.StaleOutcomesDiscarded.Inc()
		return w.state
	}
	w.state = Apply(query, out)
	return w.state
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
