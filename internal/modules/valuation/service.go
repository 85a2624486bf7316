package valuation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
)

// AnalysisResult bundles everything one company analysis produces: the
// estimated baseline, the deterministic sanity valuation, the raw
// outcome sequence for charting and the distribution summary.
type AnalysisResult struct {
	Baseline BaselineParameters  `json:"baseline"`
	DCF      DCFResult           `json:"dcf"`
	Run      *RunResult          `json:"-"`
	Outcomes []float64           `json:"outcomes,omitempty"`
	Summary  DistributionSummary `json:"summary"`
}

// Service ties the estimator and runner together behind one call
type Service struct {
	estimator *Estimator
	runner    *Runner
	log       zerolog.Logger
}

// NewService creates the valuation service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		estimator: NewEstimator(log),
		runner:    NewRunner(log),
		log:       log.With().Str("service", "valuation").Logger(),
	}
}

// Estimator exposes the baseline estimator for callers that only need
// parameters (sensitivity, ratios reporting).
func (s *Service) Estimator() *Estimator {
	return s.estimator
}

// Analyze estimates the baseline from history, applies any overrides,
// runs the Monte Carlo simulation and reduces it to a summary.
// Configuration errors propagate immediately with no partial output.
func (s *Service) Analyze(
	ctx context.Context,
	snapshots []domain.FinancialSnapshot,
	market domain.MarketContext,
	cfg SimulationConfig,
	overrides Overrides,
) (*AnalysisResult, error) {
	baseline, err := s.estimator.Estimate(snapshots, market)
	if err != nil {
		return nil, err
	}
	baseline, cfg = overrides.Apply(baseline, cfg)

	dcf, err := SinglePointDCF(baseline, BaselineGrowth(baseline.GrowthMean), cfg.TerminalGrowthMean, cfg.HorizonYears)
	if err != nil {
		return nil, err
	}

	run, err := s.runner.Run(ctx, baseline, cfg)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Baseline: baseline,
		DCF:      dcf,
		Run:      run,
		Outcomes: run.Outcomes,
		Summary:  Summarize(run),
	}, nil
}
