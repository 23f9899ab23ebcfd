// Package lookup runs the two-stage city lookup: current conditions by name,
// then the hourly forecast at the coordinates that came back.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lox/cityweather/internal/ingest"
	"github.com/lox/cityweather/internal/metrics"
	"github.com/lox/cityweather/internal/models"
)

// Kind classifies how a lookup ended.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindPartialSuccess Kind = "partial_success"
	KindFailure        Kind = "failure"
)

// ErrEmptyQuery is the failure reason for a blank city name.
var ErrEmptyQuery = errors.New("empty city name")

// Outcome is the result of a single lookup. Current is set for Success and
// PartialSuccess, Forecast only for Success. Err carries the reason for a
// Failure, or why the forecast is missing on a PartialSuccess.
type Outcome struct {
	Kind     Kind
	Current  *models.CurrentConditions
	Forecast *models.HourlyForecast
	Err      error
}

// Failed reports whether the lookup should be shown as an error.
func (o Outcome) Failed() bool {
	return o.Kind == KindFailure
}

type CurrentFetcher interface {
	FetchCurrent(ctx context.Context, city string) (*models.CurrentConditions, *ingest.FetchResult, error)
}

type ForecastFetcher interface {
	FetchHourly(ctx context.Context, lat, lon float64) (*models.HourlyForecast, *ingest.FetchResult, error)
}

// Recorder receives an audit record for every upstream call.
type Recorder interface {
	RecordLookupRun(run models.LookupRun) error
}

type Orchestrator struct {
	current  CurrentFetcher
	forecast ForecastFetcher
	recorder Recorder
}

func New(current CurrentFetcher, forecast ForecastFetcher) *Orchestrator {
	return &Orchestrator{current: current, forecast: forecast}
}

// SetRecorder enables auditing of upstream calls.
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// Lookup fetches current conditions for city and then the hourly forecast
// for its coordinates. The forecast call is only made once the first call
// has succeeded. A non-2xx forecast response, or a 2xx one without hourly
// data, downgrades the result to PartialSuccess; a transport or decode
// failure on either call is a Failure with nothing attached.
func (o *Orchestrator) Lookup(ctx context.Context, city string) Outcome {
	out := o.lookup(ctx, city)
	metrics.LookupsTotal.WithLabelValues(string(out.Kind)).Inc()
	if out.Err != nil {
		log.Printf("lookup %q: %s: %v", city, out.Kind, out.Err)
	}
	return out
}

func (o *Orchestrator) lookup(ctx context.Context, city string) Outcome {
	city = strings.TrimSpace(city)
	if city == "" {
		return Outcome{Kind: KindFailure, Err: ErrEmptyQuery}
	}

	current, result, err := o.current.FetchCurrent(ctx, city)
	o.record(city, result)
	if err != nil {
		return Outcome{Kind: KindFailure, Err: err}
	}

	forecast, result, err := o.forecast.FetchHourly(ctx, current.Lat, current.Lon)
	o.record(city, result)
	if err != nil {
		var se *ingest.StatusError
		if errors.As(err, &se) || errors.Is(err, ingest.ErrNoHourly) {
			return Outcome{Kind: KindPartialSuccess, Current: current, Err: err}
		}
		return Outcome{Kind: KindFailure, Err: fmt.Errorf("forecast for %s: %w", current.Name, err)}
	}

	return Outcome{Kind: KindSuccess, Current: current, Forecast: forecast}
}

func (o *Orchestrator) record(query string, result *ingest.FetchResult) {
	if o.recorder == nil || result == nil {
		return
	}
	run := models.LookupRun{
		Source:       result.Source,
		Endpoint:     result.Endpoint,
		Query:        query,
		HTTPStatus:   result.HTTPStatus,
		ResponseSize: result.ResponseSize,
		Success:      result.Error == nil,
		Payload:      result.Body,
	}
	if result.Error != nil {
		run.ErrorMessage = result.Error.Error()
	}
	if err := o.recorder.RecordLookupRun(run); err != nil {
		log.Printf("record lookup run: %v", err)
	}
}
