package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finlens/finlens/export"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/types"
)

func (s *Server) handleExportViolationsCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	violations, err := s.store.GetViolations(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	out, err := export.ViolationsCSV(violations)
	if err != nil {
		s.logger.Error().Err(err).Msg("csv export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	serveAttachment(w, out, "text/csv", fmt.Sprintf("violations-%s.csv", shortID(id)))
}

func (s *Server) handleExportRecommendationsCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recs, err := s.store.GetRecommendations(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	out, err := export.RecommendationsCSV(recs)
	if err != nil {
		s.logger.Error().Err(err).Msg("csv export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	serveAttachment(w, out, "text/csv", fmt.Sprintf("recommendations-%s.csv", shortID(id)))
}

func (s *Server) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, resources, violations, costRecords, recs, err := s.loadBundle(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	out, err := export.JSONBundle(session, resources, violations, costRecords, recs)
	if err != nil {
		s.logger.Error().Err(err).Msg("bundle export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	serveAttachment(w, out, "application/json", fmt.Sprintf("scan-%s.json", shortID(id)))
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, _, violations, costRecords, recs, err := s.loadBundle(id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	out, err := export.HTMLReport(session, violations, costRecords, recs)
	if err != nil {
		s.logger.Error().Err(err).Msg("report export failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// loadBundle gathers everything an export needs. Only the session is
// required; missing artifacts degrade to empty.
func (s *Server) loadBundle(id string) (*types.ScanSession, []types.Resource,
	[]types.Violation, []types.CostRecord, []types.Recommendation, error) {

	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	resources, err := s.store.GetResources(id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil, nil, nil, err
	}
	violations, err := s.store.GetViolations(id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil, nil, nil, err
	}
	costRecords, err := s.store.GetCosts(id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil, nil, nil, err
	}
	recs, err := s.store.GetRecommendations(id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil, nil, nil, err
	}
	return session, resources, violations, costRecords, recs, nil
}

func serveAttachment(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
