// Package ingest talks to the two upstream weather APIs: OpenWeatherMap for
// current conditions by city name and Open-Meteo for the hourly forecast at a
// coordinate.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/cityweather/internal/metrics"
)

const (
	SourceOpenWeather = "openweathermap"
	SourceOpenMeteo   = "openmeteo"
)

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// FetchResult describes a single upstream call for auditing.
type FetchResult struct {
	Source       string
	Endpoint     string
	HTTPStatus   int
	ResponseSize int
	Body         []byte
	Error        error
}

// get performs a GET and returns the body of a 2xx response. Non-2xx
// responses yield a *StatusError even if the body could not be read in full;
// whatever was read is recorded in result.
func get(ctx context.Context, client *http.Client, source, rawURL string, result *FetchResult) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode
	metrics.UpstreamCallsTotal.WithLabelValues(source, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	result.ResponseSize = len(body)
	result.Body = body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
