package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lox/cityweather/internal/condition"
	"github.com/lox/cityweather/internal/httputil"
	"github.com/lox/cityweather/internal/models"
)

const DefaultOpenWeatherURL = "https://api.openweathermap.org"

const currentEndpoint = "data/2.5/weather"

// CurrentClient fetches current conditions for a city from OpenWeatherMap.
type CurrentClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewCurrentClient(apiKey, baseURL string, client *http.Client) *CurrentClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if client == nil {
		client = httputil.NewClient()
	}
	return &CurrentClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type currentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

// FetchCurrent looks up current conditions for city in metric units.
func (c *CurrentClient) FetchCurrent(ctx context.Context, city string) (*models.CurrentConditions, *FetchResult, error) {
	values := url.Values{}
	values.Set("units", "metric")
	values.Set("q", city)
	values.Set("appid", c.apiKey)
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, currentEndpoint, values.Encode())

	result := &FetchResult{Source: SourceOpenWeather, Endpoint: currentEndpoint}
	body, err := get(ctx, c.client, SourceOpenWeather, u, result)
	if err != nil {
		result.Error = fmt.Errorf("fetch current: %w", err)
		return nil, result, result.Error
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		result.Error = fmt.Errorf("unmarshal current: %w", err)
		return nil, result, result.Error
	}

	cc := &models.CurrentConditions{
		Temp:      data.Main.Temp,
		Humidity:  data.Main.Humidity,
		WindSpeed: data.Wind.Speed,
		Name:      data.Name,
		Lat:       data.Coord.Lat,
		Lon:       data.Coord.Lon,
	}
	if len(data.Weather) > 0 {
		cc.Category = condition.Category(data.Weather[0].Main)
	}
	return cc, result, nil
}
