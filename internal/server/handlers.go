package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
)

// scrapeRequest is the boundary contract: a raw string-keyed criteria
// mapping plus the platform API key when YouTube is enabled.
type scrapeRequest struct {
	Criteria      map[string]string `json:"criteria"`
	YouTubeAPIKey string            `json:"youtube_api_key"`
}

type scrapeResponse struct {
	Status          string                  `json:"status"`
	TotalStrategies int                     `json:"total_strategies"`
	Strategies      []domain.StrategyRecord `json:"strategies"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleScrape validates criteria, runs the aggregation, persists the run,
// and returns the accepted strategies. Only a configuration error prevents
// returning a (possibly empty) strategies array.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	c := s.parser.Parse(req.Criteria)

	if ok, violations := criteria.Validate(c); !ok {
		s.writeError(w, http.StatusBadRequest, strings.Join(violations, "; "))
		return
	}

	if c.YouTubeEnabled && req.YouTubeAPIKey == "" {
		s.writeError(w, http.StatusBadRequest, "youtube_api_key is required when YouTube is enabled")
		return
	}

	startedAt := time.Now().UTC()
	records := s.pipeline.Run(r.Context(), c, req.YouTubeAPIKey)

	if s.repository != nil {
		run := domain.ScrapeRun{
			ID:              uuid.NewString(),
			StartedAt:       startedAt,
			Criteria:        req.Criteria,
			TotalStrategies: len(records),
			Strategies:      records,
		}
		if err := s.repository.SaveRun(r.Context(), run); err != nil {
			// History is best effort; the scrape result still goes out.
			s.log.Warn().Err(err).Msg("failed to persist scrape run")
		}
	}

	s.writeJSON(w, http.StatusOK, scrapeResponse{
		Status:          "success",
		TotalStrategies: len(records),
		Strategies:      records,
	})
}

// handleRuns returns recent persisted runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.repository == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"runs": []any{}})
		return
	}

	runs, err := s.repository.RecentRuns(r.Context(), 20)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load runs")
		s.writeError(w, http.StatusInternalServerError, "failed to load run history")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Status: "error", Message: message})
}
