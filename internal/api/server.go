package api

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/cityweather/internal/models"
	"github.com/lox/cityweather/internal/store"
	"github.com/lox/cityweather/internal/view"
	"github.com/lox/cityweather/internal/widget"
)

// AuditLog is the read side of the lookup audit log.
type AuditLog interface {
	RecentLookupRuns(limit int) ([]models.LookupRun, error)
	GetLookupStats() ([]store.LookupStats, error)
	GetRawPayloadStats() (*store.RawPayloadStats, error)
	GetRawPayload(runID int64) ([]byte, error)
	MigrationVersion() (int, error)
}

type Server struct {
	looker   widget.Looker
	port     string
	sessions *sessions
	audit    AuditLog
	static   fs.FS
}

func NewServer(looker widget.Looker, port string) *Server {
	return &Server{
		looker:   looker,
		port:     port,
		sessions: newSessions(looker, DefaultSessionIdle),
		static:   view.Static(),
	}
}

// SetAuditLog exposes recorded lookup runs on /api/runs and in /health.
func (s *Server) SetAuditLog(a AuditLog) {
	s.audit = a
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)

	r.Get("/", s.handleIndex)
	r.Get("/lookup", s.handleLookup)
	r.Post("/lookup", s.handleLookup)
	r.Get("/partials/result", s.handleResultPartial)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/lookup", s.handleAPILookup)
		r.Get("/runs", s.handleAPIRuns)
		r.Get("/runs/{id}/payload", s.handleAPIRunPayload)
	})
	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
