package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/cityweather/internal/store"
)

func upstreams(t *testing.T) (owm, meteo *httptest.Server) {
	t.Helper()
	owm = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "New York" {
			http.Error(w, `{"cod":"404"}`, http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"coord":{"lat":40.7,"lon":-74},"weather":[{"main":"Rain"}],"main":{"temp":8.5,"humidity":90},"wind":{"speed":20},"name":"New York"}`))
	}))
	meteo = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"precipitation":[1.5],"surface_pressure":[1001],"soil_temperature_0cm":[7],"soil_moisture_9_to_27cm":[35]}}`))
	}))
	t.Cleanup(func() {
		owm.Close()
		meteo.Close()
	})
	return owm, meteo
}

func TestLookupCmd(t *testing.T) {
	owm, meteo := upstreams(t)
	g := &Globals{OpenWeatherKey: "k", OpenWeatherURL: owm.URL, OpenMeteoURL: meteo.URL, Timeout: 5 * time.Second}

	if err := (&LookupCmd{City: []string{"New", "York"}}).Run(g); err != nil {
		t.Fatalf("Run: %v", err)
	}

	err := (&LookupCmd{City: []string{"Zzzznotacity"}}).Run(g)
	if !errors.Is(err, errLookupFailed) {
		t.Fatalf("Run(invalid) = %v, want errLookupFailed", err)
	}
}

func TestLookupCmd_RecordsToAuditLog(t *testing.T) {
	owm, meteo := upstreams(t)
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	g := &Globals{OpenWeatherKey: "k", OpenWeatherURL: owm.URL, OpenMeteoURL: meteo.URL, DB: dbPath}

	if err := (&LookupCmd{City: []string{"New York"}}).Run(g); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	runs, err := st.RecentLookupRuns(10)
	if err != nil {
		t.Fatalf("RecentLookupRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("recorded %d runs, want 2", len(runs))
	}
}
