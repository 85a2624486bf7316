package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/intrinsic/internal/modules/valuation"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "intrinsic",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// analyzeRequest carries optional per-request simulation settings and
// parameter overrides. Absent fields fall back to server defaults.
type analyzeRequest struct {
	Trials         *int     `json:"trials,omitempty"`
	HorizonYears   *int     `json:"horizon_years,omitempty"`
	Workers        *int     `json:"workers,omitempty"`
	Seed           *uint64  `json:"seed,omitempty"`
	GrowthMean     *float64 `json:"growth_mean,omitempty"`
	DiscountRate   *float64 `json:"discount_rate,omitempty"`
	TerminalGrowth *float64 `json:"terminal_growth,omitempty"`
	TaxRate        *float64 `json:"tax_rate,omitempty"`
	Bins           *int     `json:"bins,omitempty"`
}

// decodeAnalyzeRequest tolerates an empty body: every field has a
// server-side default.
func decodeAnalyzeRequest(r *http.Request) (analyzeRequest, error) {
	var req analyzeRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func (s *Server) simConfig(req analyzeRequest) valuation.SimulationConfig {
	cfg := valuation.DefaultConfig()
	cfg.Trials = s.cfg.Trials
	cfg.HorizonYears = s.cfg.HorizonYears
	cfg.Workers = s.cfg.Workers

	if req.Trials != nil {
		cfg.Trials = *req.Trials
	}
	if req.HorizonYears != nil {
		cfg.HorizonYears = *req.HorizonYears
	}
	if req.Workers != nil {
		cfg.Workers = *req.Workers
	}
	cfg.Seed = req.Seed
	return cfg
}

func (req analyzeRequest) overrides() valuation.Overrides {
	return valuation.Overrides{
		GrowthMean:     req.GrowthMean,
		DiscountRate:   req.DiscountRate,
		TerminalGrowth: req.TerminalGrowth,
		TaxRate:        req.TaxRate,
		HorizonYears:   req.HorizonYears,
	}
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "symbol"))
}

// handleAnalyze runs the full pipeline for one symbol
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := s.analysis.Analyze(r.Context(), symbol, s.simConfig(req), req.overrides())
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleDistribution runs the simulation and returns the fair value
// histogram alongside the summary.
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	bins := 40
	if req.Bins != nil && *req.Bins > 0 {
		bins = *req.Bins
	}

	report, err := s.analysis.Analyze(r.Context(), symbol, s.simConfig(req), req.overrides())
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"summary":   report.Summary,
		"histogram": valuation.Histogram(report.Outcomes, bins),
	})
}

// handleCompare ranks a set of symbols against each other
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		analyzeRequest
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Symbols) < 2 {
		s.writeError(w, http.StatusBadRequest, "at least two symbols are required")
		return
	}

	for i, symbol := range req.Symbols {
		req.Symbols[i] = strings.ToUpper(symbol)
	}

	result, err := s.comparison.Compare(r.Context(), req.Symbols, s.simConfig(req.analyzeRequest))
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleSync refreshes stored statement history for a symbol
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	history, err := s.analysis.Sync(symbol)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"periods": len(history),
	})
}

// handleHistory returns stored snapshot history for a symbol
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	history, err := s.repo.History(symbol)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(history) == 0 {
		s.writeError(w, http.StatusNotFound, "no history for "+symbol)
		return
	}

	s.writeJSON(w, http.StatusOK, history)
}

// handleListCompanies lists tracked companies
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.repo.ListActiveCompanies()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, companies)
}

// handleLatestSummary returns the most recent stored valuation for a
// symbol without re-running the simulation.
func (s *Server) handleLatestSummary(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	summary, err := s.repo.LatestSummary(symbol)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		s.writeError(w, http.StatusNotFound, "no valuation stored for "+symbol)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleLatestSummaries returns the most recent stored valuation per
// tracked symbol.
func (s *Server) handleLatestSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.repo.LatestSummaries()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, summaries)
}

// writeAnalysisError maps pipeline errors onto HTTP status codes
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, valuation.ErrInvalidConfig):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, valuation.ErrInsufficientData), errors.Is(err, valuation.ErrInvalidShareCount):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
