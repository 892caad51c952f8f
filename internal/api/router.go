package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter mounts the v1 routes. Request IDs are assigned first so every
// later middleware and handler can log them.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(
		s.requestIDMiddleware,
		s.loggingMiddleware,
		s.recoveryMiddleware,
		s.corsMiddleware,
		s.bodySizeLimitMiddleware,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", s.handleHealth)
		v1.Get("/exports", s.handleListExports)
		v1.Get("/exports/{id}", s.handleGetExport)
		v1.Post("/exports/ets-csv", s.handleExportETSCSV)
	})

	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	History bool   `json:"history"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
		History: s.history != nil,
	})
}
