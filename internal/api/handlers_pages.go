package api

import (
	"log"
	"net/http"

	"github.com/lox/cityweather/internal/view"
	"github.com/lox/cityweather/internal/widget"
)

// snapshot returns the session's state, or an empty widget for visitors
// that have not run a lookup yet.
func (s *Server) snapshot(r *http.Request) widget.State {
	if wd, ok := s.sessions.existing(r); ok {
		return wd.Snapshot()
	}
	return widget.State{}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.snapshot(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, st); err != nil {
		log.Printf("template error: %v", err)
	}
}

// handleLookup runs a lookup for the submitted city. htmx requests get the
// result partial, everything else the full page.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	wd := s.sessions.widgetFor(w, r)
	st := wd.Submit(r.Context(), r.FormValue("city"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var err error
	if r.Header.Get("HX-Request") == "true" {
		err = view.RenderResult(w, st)
	} else {
		err = view.Render(w, st)
	}
	if err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleResultPartial(w http.ResponseWriter, r *http.Request) {
	st := s.snapshot(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderResult(w, st); err != nil {
		log.Printf("template error: %v", err)
	}
}
