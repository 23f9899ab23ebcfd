package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lox/cityweather/internal/condition"
	"github.com/lox/cityweather/internal/lookup"
	"github.com/lox/cityweather/internal/models"
	"github.com/lox/cityweather/internal/store"
	"github.com/lox/cityweather/internal/view"
)

type LookupResponse struct {
	Kind     lookup.Kind               `json:"kind"`
	Error    string                    `json:"error,omitempty"`
	Icon     string                    `json:"icon,omitempty"`
	Current  *models.CurrentConditions `json:"current,omitempty"`
	Forecast *models.HourlyForecast    `json:"forecast,omitempty"`
}

// RunsResponse is the /api/runs payload.
type RunsResponse struct {
	Runs     []models.LookupRun     `json:"runs"`
	Stats    []store.LookupStats    `json:"stats"`
	Payloads *store.RawPayloadStats `json:"payloads"`
}

type HealthStatus struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	AuditLog      string `json:"audit_log"`
	SchemaVersion int    `json:"schema_version,omitempty"`
	Error         string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleAPILookup runs a stateless lookup. Every outcome is a 200; callers
// tell them apart by kind.
func (s *Server) handleAPILookup(w http.ResponseWriter, r *http.Request) {
	out := s.looker.Lookup(r.Context(), r.URL.Query().Get("city"))

	resp := LookupResponse{Kind: out.Kind}
	switch out.Kind {
	case lookup.KindFailure:
		resp.Error = view.ErrorMessage
	case lookup.KindSuccess:
		resp.Forecast = out.Forecast
		fallthrough
	case lookup.KindPartialSuccess:
		resp.Current = out.Current
		resp.Icon = string(condition.Icon(out.Current.Category))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIRuns(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit log disabled"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	runs, err := s.audit.RecentLookupRuns(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []models.LookupRun{}
	}

	stats, err := s.audit.GetLookupStats()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []store.LookupStats{}
	}

	payloads, err := s.audit.GetRawPayloadStats()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs, Stats: stats, Payloads: payloads})
}

// handleAPIRunPayload returns the raw upstream body archived for a run.
func (s *Server) handleAPIRunPayload(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit log disabled"})
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}

	payload, err := s.audit.GetRawPayload(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if payload == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no payload for run"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:   "ok",
		Sessions: s.sessions.len(),
		AuditLog: "disabled",
	}

	if s.audit != nil {
		health.AuditLog = "ok"
		version, err := s.audit.MigrationVersion()
		if err != nil {
			health.Status = "error"
			health.AuditLog = "error"
			health.Error = err.Error()
			writeJSON(w, http.StatusInternalServerError, health)
			return
		}
		health.SchemaVersion = version
	}
	writeJSON(w, http.StatusOK, health)
}
