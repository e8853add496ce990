package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openkpis/edge-service/catalog"
)

// ListEntriesHandler returns every entry in a collection.
func (s *Server) ListEntriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.catalog.List(r.Context(), catalog.EntityType(r.PathValue("collection")))
		if err != nil {
			s.writeCatalogError(w, err, "List entries failed")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// GetEntryHandler returns a single entry by slug.
func (s *Server) GetEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := s.catalog.Get(r.Context(), catalog.EntityType(r.PathValue("collection")), r.PathValue("slug"))
		if err != nil {
			s.writeCatalogError(w, err, "Get entry failed")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// CreateEntryHandler creates a new entry attributed to the session user.
func (s *Server) CreateEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		session := sessionFromContext(r.Context())
		entry, err := s.catalog.Create(r.Context(), catalog.EntityType(r.PathValue("collection")), in, session.User.Login)
		if err != nil {
			s.writeCatalogError(w, err, "Create entry failed")
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// UpdateEntryHandler applies a partial update to an existing entry.
func (s *Server) UpdateEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		session := sessionFromContext(r.Context())
		entry, err := s.catalog.Update(r.Context(), catalog.EntityType(r.PathValue("collection")), r.PathValue("slug"), in, session.User.Login)
		if err != nil {
			s.writeCatalogError(w, err, "Update entry failed")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// ArchiveEntryHandler soft-deletes an entry by moving it to archived.
func (s *Server) ArchiveEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		entry, err := s.catalog.Archive(r.Context(), catalog.EntityType(r.PathValue("collection")), r.PathValue("slug"), session.User.Login)
		if err != nil {
			s.writeCatalogError(w, err, "Archive entry failed")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// DashboardKPIsHandler lists the KPIs attached to a dashboard.
func (s *Server) DashboardKPIsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kpis, err := s.catalog.DashboardKPIs(r.Context(), r.PathValue("slug"))
		if err != nil {
			s.writeCatalogError(w, err, "List dashboard KPIs failed")
			return
		}
		writeJSON(w, http.StatusOK, kpis)
	}
}

// AttachDashboardKPIHandler links a KPI to a dashboard. Attaching an
// already linked KPI succeeds without effect.
func (s *Server) AttachDashboardKPIHandler() http.HandlerFunc {
	type attachRequest struct {
		KPISlug string `json:"kpi_slug"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req attachRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.KPISlug == "" {
			writeError(w, http.StatusBadRequest, "Missing kpi_slug")
			return
		}

		session := sessionFromContext(r.Context())
		if err := s.catalog.AttachKPI(r.Context(), r.PathValue("slug"), req.KPISlug, session.User.Login); err != nil {
			s.writeCatalogError(w, err, "Attach KPI failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// AuditLogHandler returns the most recent audit rows, newest first.
func (s *Server) AuditLogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := s.catalog.RecentAudit(r.Context(), limit)
		if err != nil {
			s.writeCatalogError(w, err, "Audit log fetch failed")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// HealthzHandler reports liveness, including database reachability when a
// pool is configured.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.db.PingContext(ctx); err != nil {
				log.Err(err).Msg("Health check database ping failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

func (s *Server) writeCatalogError(w http.ResponseWriter, err error, logMsg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Err(err).Msg(logMsg)
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}
