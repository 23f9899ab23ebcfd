package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/cityweather/internal/api"
	"github.com/lox/cityweather/internal/httputil"
	"github.com/lox/cityweather/internal/ingest"
	"github.com/lox/cityweather/internal/jobs"
	"github.com/lox/cityweather/internal/lookup"
	"github.com/lox/cityweather/internal/store"
	"github.com/lox/cityweather/internal/view"
	"github.com/lox/cityweather/internal/widget"
)

var errLookupFailed = errors.New("lookup failed")

// Globals are shared by every command.
type Globals struct {
	OpenWeatherKey string        `name:"owm-key" env:"OPENWEATHER_API_KEY" required:"" help:"OpenWeatherMap API key."`
	OpenWeatherURL string        `name:"owm-url" env:"OPENWEATHER_URL" default:"${owm_url}" help:"OpenWeatherMap base URL."`
	OpenMeteoURL   string        `name:"meteo-url" env:"OPENMETEO_URL" default:"${meteo_url}" help:"Open-Meteo base URL."`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" default:"30s" help:"Upstream request timeout."`
	DB             string        `name:"db" env:"AUDIT_DB" help:"Path to SQLite audit log of upstream calls (disabled when empty)."`
}

type CLI struct {
	Globals

	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Run the web widget."`
	Lookup LookupCmd `cmd:"" help:"Look up a city once and print the result."`
}

type ServeCmd struct {
	Port            string `env:"PORT" default:"8080" help:"HTTP server port."`
	RetentionDays   int    `env:"AUDIT_RETENTION_DAYS" default:"30" help:"Days of audit log to keep."`
	CleanupSchedule string `env:"AUDIT_CLEANUP_SCHEDULE" default:"@daily" help:"Cron schedule for audit log cleanup."`
}

type LookupCmd struct {
	City []string `arg:"" help:"City name."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("cityweather"),
		kong.Description("Current conditions and hourly forecast for a city."),
		kong.Vars{
			"owm_url":   ingest.DefaultOpenWeatherURL,
			"meteo_url": ingest.DefaultOpenMeteoURL,
		},
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}

// orchestrator wires the upstream clients and, if configured, the audit log.
// The returned store is nil when auditing is disabled.
func (g *Globals) orchestrator() (*lookup.Orchestrator, *store.Store, error) {
	client := httputil.NewClientWithTimeout(g.Timeout)
	orch := lookup.New(
		ingest.NewCurrentClient(g.OpenWeatherKey, g.OpenWeatherURL, client),
		ingest.NewForecastClient(g.OpenMeteoURL, client),
	)
	if g.DB == "" {
		return orch, nil, nil
	}

	st, err := store.Open(g.DB)
	if err != nil {
		return nil, nil, err
	}
	orch.SetRecorder(st)
	log.Printf("audit log at %s", g.DB)
	return orch, st, nil
}

func (c *ServeCmd) Run(g *Globals) error {
	orch, st, err := g.orchestrator()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(orch, c.Port)
	if st != nil {
		defer st.Close()
		server.SetAuditLog(st)

		retention := jobs.NewRetention(st, c.RetentionDays, c.CleanupSchedule)
		go func() {
			if err := retention.Run(ctx); err != nil {
				log.Printf("retention: %v", err)
			}
		}()
	}

	log.Printf("starting server on :%s", c.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (c *LookupCmd) Run(g *Globals) error {
	orch, st, err := g.orchestrator()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	query := strings.Join(c.City, " ")
	out := orch.Lookup(ctx, query)
	state := widget.Apply(query, out)

	text, err := view.RenderText(state)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, text)

	if out.Failed() {
		return errLookupFailed
	}
	return nil
}
