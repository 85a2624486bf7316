package comparison

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/modules/valuation"
	"github.com/aristath/intrinsic/internal/services"
)

// Analyzer runs a full symbol analysis. Satisfied by the analysis
// service.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, cfg valuation.SimulationConfig, overrides valuation.Overrides) (*services.Report, error)
}

// Entry is one symbol's standing in a comparison run.
type Entry struct {
	Rank            int                      `json:"rank"`
	Symbol          string                   `json:"symbol"`
	CurrentPrice    float64                  `json:"current_price"`
	MedianFairValue float64                  `json:"median_fair_value"`
	ProbUndervalued float64                  `json:"prob_undervalued"`
	MedianUpside    float64                  `json:"median_upside"`
	Recommendation  valuation.Recommendation `json:"recommendation"`
	LowConfidence   bool                     `json:"low_confidence"`
}

// Result holds a ranked comparison across symbols. Symbols whose
// analysis failed are listed separately instead of aborting the run.
type Result struct {
	Entries []Entry           `json:"entries"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Service ranks companies against each other by probability of
// undervaluation.
type Service struct {
	analyzer Analyzer
	log      zerolog.Logger
}

// NewService creates a new comparison service
func NewService(analyzer Analyzer, log zerolog.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		log:      log.With().Str("module", "comparison").Logger(),
	}
}

// Compare analyzes each symbol with the same configuration and ranks
// the successful ones, most undervalued first. Ties break by median
// upside. Cancellation aborts the remaining symbols.
func (s *Service) Compare(ctx context.Context, symbols []string, cfg valuation.SimulationConfig) (*Result, error) {
	result := &Result{Failed: map[string]string{}}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report, err := s.analyzer.Analyze(ctx, symbol, cfg, valuation.Overrides{})
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol in comparison")
			result.Failed[symbol] = err.Error()
			continue
		}

		result.Entries = append(result.Entries, Entry{
			Symbol:          symbol,
			CurrentPrice:    report.Summary.CurrentPrice,
			MedianFairValue: report.Summary.Median,
			ProbUndervalued: report.Summary.ProbUndervalued,
			MedianUpside:    report.Summary.MedianUpside,
			Recommendation:  report.Summary.Recommendation,
			LowConfidence:   report.Baseline.LowConfidence,
		})
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		a, b := result.Entries[i], result.Entries[j]
		if a.ProbUndervalued != b.ProbUndervalued {
			return a.ProbUndervalued > b.ProbUndervalued
		}
		return a.MedianUpside > b.MedianUpside
	})
	for i := range result.Entries {
		result.Entries[i].Rank = i + 1
	}

	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}
