// Package api exposes the scan pipeline over REST. Scans are triggered
// asynchronously: the POST handler persists a pending session, responds
// 202, and hands the session to the runner in the background.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finlens/finlens/orchestrator"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

// ScanRunner executes one scan for a pending session.
type ScanRunner interface {
	Run(ctx context.Context, session *types.ScanSession) (*orchestrator.ScanResult, error)
}

// Defaults holds the scan parameters applied when a trigger request
// leaves them out.
type Defaults struct {
	Regions       []string
	ResourceTypes []string
}

// Server is the REST surface over the store and the scan runner.
type Server struct {
	store    *storage.Store
	runner   ScanRunner
	defaults Defaults
	logger   *telemetry.Logger
	router   *chi.Mux
}

func NewServer(store *storage.Store, runner ScanRunner, defaults Defaults) *Server {
	s := &Server{
		store:    store,
		runner:   runner,
		defaults: defaults,
		logger:   telemetry.NewLogger("api"),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/healthz", s.handleHealthz)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", s.handleTriggerScan)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/diff", s.handleDiff)
		r.Route("/scans/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetScan)
			r.Get("/resources", s.handleListResources)
			r.Get("/violations", s.handleListViolations)
			r.Get("/recommendations", s.handleListRecommendations)
			r.Get("/costs", s.handleListCosts)
			r.Get("/compliance", s.handleCompliance)
			r.Get("/risk", s.handleRisk)
			r.Get("/export/violations.csv", s.handleExportViolationsCSV)
			r.Get("/export/recommendations.csv", s.handleExportRecommendationsCSV)
			r.Get("/export/bundle.json", s.handleExportBundle)
			r.Get("/export/report.html", s.handleExportReport)
		})
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler for mounting into a server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
