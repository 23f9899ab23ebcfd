package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lox/cityweather/internal/httputil"
	"github.com/lox/cityweather/internal/models"
)

const DefaultOpenMeteoURL = "https://api.open-meteo.com"

const forecastEndpoint = "v1/forecast"

// ErrNoHourly is returned for a successful response that carries no hourly
// object.
var ErrNoHourly = errors.New("forecast has no hourly data")

// HourlyFields are the hourly series requested from Open-Meteo.
var HourlyFields = []string{
	"temperature_2m",
	"precipitation",
	"surface_pressure",
	"wind_direction_10m",
	"soil_temperature_0cm",
	"soil_moisture_9_to_27cm",
}

// ForecastClient fetches hourly forecasts for a coordinate from Open-Meteo.
type ForecastClient struct {
	baseURL string
	client  *http.Client
}

func NewForecastClient(baseURL string, client *http.Client) *ForecastClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if client == nil {
		client = httputil.NewClient()
	}
	return &ForecastClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type forecastResponse struct {
	Hourly *models.HourlyForecast `json:"hourly"`
}

// FetchHourly returns the hourly forecast at lat/lon.
func (f *ForecastClient) FetchHourly(ctx context.Context, lat, lon float64) (*models.HourlyForecast, *FetchResult, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("hourly", strings.Join(HourlyFields, ","))
	u := fmt.Sprintf("%s/%s?%s", f.baseURL, forecastEndpoint, values.Encode())

	result := &FetchResult{Source: SourceOpenMeteo, Endpoint: forecastEndpoint}
	body, err := get(ctx, f.client, SourceOpenMeteo, u, result)
	if err != nil {
		result.Error = fmt.Errorf("fetch forecast: %w", err)
		return nil, result, result.Error
	}

	var data forecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		result.Error = fmt.Errorf("unmarshal forecast: %w", err)
		return nil, result, result.Error
	}
	if data.Hourly == nil {
		result.Error = fmt.Errorf("unmarshal forecast: %w", ErrNoHourly)
		return nil, result, result.Error
	}

	return data.Hourly, result, nil
}
