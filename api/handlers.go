package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finlens/finlens/diffengine"
	"github.com/finlens/finlens/scoring"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/types"
)

const defaultPageSize = 50

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "scan not found")
		return
	}
	s.logger.Error().Err(err).Msg("store read failed")
	respondError(w, http.StatusInternalServerError, "internal error")
}

func paging(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = defaultPageSize
	}
	return offset, limit
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// scanRequest is the optional POST /scans body.
type scanRequest struct {
	Regions       []string `json:"regions,omitempty"`
	ResourceTypes []string `json:"resource_types,omitempty"`
}

func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	// An empty body triggers a scan with all defaults.
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	regions := req.Regions
	if len(regions) == 0 {
		regions = s.defaults.Regions
	}
	resourceTypes := req.ResourceTypes
	if len(resourceTypes) == 0 {
		resourceTypes = s.defaults.ResourceTypes
	}
	for _, raw := range resourceTypes {
		if _, err := types.ParseResourceType(raw); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	session := types.NewScanSession(regions, resourceTypes, "api")
	if err := s.store.PutSession(session); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist session")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The request context dies with the response; the scan must not.
	go func() {
		if _, err := s.runner.Run(context.Background(), session); err != nil {
			s.logger.Error().Err(err).Str("scan_id", session.ID).Msg("background scan failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"scan_id": session.ID,
		"status":  string(types.ScanPending),
	})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r)
	sessions, total, err := s.store.ListSessions(offset, limit)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scans":  sessions,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := s.store.GetResources(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	typeFilter := r.URL.Query().Get("type")
	regionFilter := r.URL.Query().Get("region")
	filtered := resources[:0:0]
	for _, res := range resources {
		if typeFilter != "" && string(res.Type) != typeFilter {
			continue
		}
		if regionFilter != "" && res.Region != regionFilter {
			continue
		}
		filtered = append(filtered, res)
	}

	offset, limit := paging(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"resources": page(filtered, offset, limit),
		"total":     len(filtered),
		"offset":    offset,
		"limit":     limit,
	})
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	violations, err := s.store.GetViolations(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	severityFilter := r.URL.Query().Get("severity")
	typeFilter := r.URL.Query().Get("type")
	ruleFilter := r.URL.Query().Get("rule_id")
	filtered := violations[:0:0]
	for _, v := range violations {
		if severityFilter != "" && string(v.Severity) != severityFilter {
			continue
		}
		if typeFilter != "" && string(v.ResourceType) != typeFilter {
			continue
		}
		if ruleFilter != "" && v.RuleID != ruleFilter {
			continue
		}
		filtered = append(filtered, v)
	}

	offset, limit := paging(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"violations": page(filtered, offset, limit),
		"total":      len(filtered),
		"offset":     offset,
		"limit":      limit,
	})
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.GetRecommendations(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	var total float64
	for _, rec := range recs {
		total += rec.EstimatedMonthlySavings
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"recommendations":       recs,
		"total_monthly_savings": total,
	})
}

func (s *Server) handleListCosts(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetCosts(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	var total float64
	for _, rec := range records {
		total += rec.Amount
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"records":            records,
		"total_monthly_cost": total,
	})
}

// handleCompliance serves the stored report, recomputing and persisting
// it when a scan predates the compliance stage. Recomputation is
// idempotent: the report is a pure function of the scan's violations.
func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.store.GetCompliance(id)
	if errors.Is(err, storage.ErrNotFound) {
		violations, verr := s.store.GetViolations(id)
		if verr != nil {
			s.respondStoreError(w, verr)
			return
		}
		report = scoring.Compliance(violations)
		if serr := s.store.SaveCompliance(id, report); serr != nil {
			s.logger.Error().Err(serr).Str("scan_id", id).Msg("failed to persist recomputed compliance")
		}
	} else if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleRisk mirrors handleCompliance for the risk report.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.store.GetRisk(id)
	if errors.Is(err, storage.ErrNotFound) {
		resources, rerr := s.store.GetResources(id)
		if rerr != nil {
			s.respondStoreError(w, rerr)
			return
		}
		violations, verr := s.store.GetViolations(id)
		if verr != nil {
			s.respondStoreError(w, verr)
			return
		}
		byResource := make(map[string][]types.Violation)
		for _, v := range violations {
			byResource[v.ResourceID] = append(byResource[v.ResourceID], v)
		}
		report = scoring.ScanRisk(resources, byResource)
		if serr := s.store.SaveRisk(id, report); serr != nil {
			s.logger.Error().Err(serr).Str("scan_id", id).Msg("failed to persist recomputed risk")
		}
	} else if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	scanA := r.URL.Query().Get("scan_a")
	scanB := r.URL.Query().Get("scan_b")
	if scanA == "" || scanB == "" {
		respondError(w, http.StatusBadRequest, "scan_a and scan_b query parameters are required")
		return
	}

	inputA, err := s.store.LoadDiffInput(scanA)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	inputB, err := s.store.LoadDiffInput(scanB)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, diffengine.Compare(inputA, inputB))
}
