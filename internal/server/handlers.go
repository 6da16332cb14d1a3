// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/gateway"
	"github.com/xkilldash9x/guardian/internal/registry"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	kind, err := schemas.ParseTaskKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	schema, err := registry.For(kind)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, schema)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	kind, err := schemas.ParseTaskKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req schemas.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Kind = kind
	if req.Language == "" {
		req.Language = s.defaults.DefaultLanguage
	}

	report, err := s.gw.Analyze(r.Context(), req, nil)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Unexpected analysis error.", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
			respondError(w, status, "internal server error")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// statusFor maps gateway errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schemas.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
