// Package view renders widget state. Rendering is a pure function of
// widget.State: the same state always produces the same output.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/lox/cityweather/internal/condition"
	"github.com/lox/cityweather/internal/htmlutil"
	"github.com/lox/cityweather/internal/models"
	"github.com/lox/cityweather/internal/widget"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ErrorMessage is shown for any failed lookup.
const ErrorMessage = "Invalid City Name"

var tmpl = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Page is the template model for the widget.
type Page struct {
	Query    string
	Kind     string
	Error    bool
	Message  string
	Current  *CurrentView
	Forecast *ForecastView
}

type CurrentView struct {
	IconPath  string
	IconLabel string
	Temp      string
	Name      string
	Lat       string
	Lon       string
	Humidity  string
	WindSpeed string
}

// ForecastView holds the first hour of each displayed series. Temperature
// and wind direction are fetched but not shown.
type ForecastView struct {
	Precipitation   string
	SurfacePressure string
	SoilTemperature string
	SoilMoisture    string
}

// NewPage builds the template model for st.
func NewPage(st widget.State) Page {
	p := Page{Query: st.Query, Kind: string(st.Kind), Error: st.Error}
	if st.Error {
		p.Message = ErrorMessage
	}
	if st.Current != nil {
		p.Current = newCurrentView(st.Current)
	}
	if st.Forecast != nil {
		p.Forecast = newForecastView(st.Forecast)
	}
	return p
}

func newCurrentView(c *models.CurrentConditions) *CurrentView {
	icon := condition.Icon(c.Category)
	return &CurrentView{
		IconPath:  icon.Path(),
		IconLabel: icon.Label(),
		Temp:      strconv.Itoa(RoundHalfUp(c.Temp)),
		Name:      c.Name,
		Lat:       FormatNumber(c.Lat),
		Lon:       FormatNumber(c.Lon),
		Humidity:  strconv.Itoa(c.Humidity),
		WindSpeed: FormatNumber(c.WindSpeed),
	}
}

func newForecastView(f *models.HourlyForecast) *ForecastView {
	return &ForecastView{
		Precipitation:   firstOf(f.Precipitation),
		SurfacePressure: firstOf(f.SurfacePressure),
		SoilTemperature: firstOf(f.SoilTemperature),
		SoilMoisture:    firstOf(f.SoilMoisture),
	}
}

// firstOf renders the first hour of a series, or "-" when there is none.
func firstOf(series []*float64) string {
	v, ok := models.First(series)
	if !ok {
		return "-"
	}
	return FormatNumber(v)
}

// RoundHalfUp rounds to the nearest integer with halves going towards
// positive infinity, so 2.5 becomes 3 and -2.5 becomes -2.
func RoundHalfUp(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}

// FormatNumber prints v with the fewest digits that represent it exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render writes the full widget page.
func Render(w io.Writer, st widget.State) error {
	return tmpl.ExecuteTemplate(w, "index.html", NewPage(st))
}

// RenderResult writes only the result area (error, conditions, forecast).
func RenderResult(w io.Writer, st widget.State) error {
	return tmpl.ExecuteTemplate(w, "result.html", NewPage(st))
}

// RenderText renders the result area as plain text.
func RenderText(st widget.State) (string, error) {
	var buf bytes.Buffer
	if err := RenderResult(&buf, st); err != nil {
		return "", fmt.Errorf("render result: %w", err)
	}
	return strings.TrimSpace(htmlutil.ToText(buf.String())), nil
}

// Static returns the embedded icon assets, rooted so that icons live under
// icons/<name>.svg.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
