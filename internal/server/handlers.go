package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"MarketAnalytics/internal/analytics"
	"MarketAnalytics/internal/model"
	"MarketAnalytics/internal/recorder"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 16 << 20

// analyzeRequest is the body of POST /api/analyze. Config fields left out keep
// the server defaults.
type analyzeRequest struct {
	Prices map[string][]model.Point `json:"prices"`
	Config json.RawMessage          `json:"config,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "market-analytics",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	cfg := s.defaults
	cfg.Indicators = append([]string(nil), s.defaults.Indicators...)
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode config: %v", err))
			return
		}
	}

	prices := make(map[string]model.PriceSeries, len(req.Prices))
	for id, points := range req.Prices {
		ps, err := model.NewPriceSeries(id, points)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("asset %q: %v", id, err))
			return
		}
		prices[id] = ps
	}

	res, err := analytics.Analyze(prices, cfg)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.recorder.RecentRuns(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list runs")
		s.writeError(w, http.StatusInternalServerError, "failed to load runs")
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.recorder.LoadRun(chi.URLParam(r, "id"))
	if errors.Is(err, recorder.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("load run")
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, http.StatusServiceUnavailable, "scheduled runs are not configured")
		return
	}
	res, err := s.runner.RunAnalysis(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("triggered run")
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrMissingAssetData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response. The body is encoded before the status is
// sent so an encoding failure still reaches the client as a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
