package models

import (
	"github.com/lox/cityweather/internal/condition"
)

// CurrentConditions is the snapshot returned by the current-conditions call.
type CurrentConditions struct {
	Category  condition.Category `json:"category"`
	Temp      float64            `json:"temp"`     // °C
	Humidity  int                `json:"humidity"` // %
	WindSpeed float64            `json:"wind_speed"`
	Name      string             `json:"name"`
	Lat       float64            `json:"lat"`
	Lon       float64            `json:"lon"`
}

// HourlyForecast holds one value per forecast hour for each requested
// field. Index 0 is the current hour. Open-Meteo sends null for hours it has
// no value for, which decodes to a nil element.
type HourlyForecast struct {
	Time            []string   `json:"time,omitempty"`
	Temperature     []*float64 `json:"temperature_2m"`
	Precipitation   []*float64 `json:"precipitation"`
	SurfacePressure []*float64 `json:"surface_pressure"`
	WindDirection   []*float64 `json:"wind_direction_10m"`
	SoilTemperature []*float64 `json:"soil_temperature_0cm"`
	SoilMoisture    []*float64 `json:"soil_moisture_9_to_27cm"`
}

// First returns the first value of a series, or false if the series is
// empty or its first hour is null.
func First(series []*float64) (float64, bool) {
	if len(series) == 0 || series[0] == nil {
		return 0, false
	}
	return *series[0], true
}

// LookupRun is an audit record of one upstream call made during a lookup.
type LookupRun struct {
	ID           int64  `json:"id"`
	Source       string `json:"source"` // "openweathermap", "openmeteo"
	Endpoint     string `json:"endpoint"`
	Query        string `json:"query"`
	HTTPStatus   int    `json:"http_status,omitempty"`
	ResponseSize int    `json:"response_size"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error,omitempty"`
	Payload      []byte `json:"-"`
}
