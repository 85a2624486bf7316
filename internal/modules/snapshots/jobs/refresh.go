package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/internal/modules/valuation"
	"github.com/aristath/intrinsic/internal/services"
)

// CompanyLister enumerates the companies the job should revalue.
// Satisfied by the snapshots repository.
type CompanyLister interface {
	ListActiveCompanies() ([]domain.Company, error)
}

// RefreshJob re-syncs statement history and re-runs the valuation for
// every tracked company. One failing symbol does not stop the rest.
type RefreshJob struct {
	companies CompanyLister
	analysis  *services.AnalysisService
	cfg       valuation.SimulationConfig
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshJob creates a new valuation refresh job
func NewRefreshJob(
	companies CompanyLister,
	analysis *services.AnalysisService,
	cfg valuation.SimulationConfig,
	timeout time.Duration,
	log zerolog.Logger,
) *RefreshJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &RefreshJob{
		companies: companies,
		analysis:  analysis,
		cfg:       cfg,
		timeout:   timeout,
		log:       log.With().Str("job", "valuation_refresh").Logger(),
	}
}

// Name implements scheduler.Job
func (j *RefreshJob) Name() string {
	return "valuation_refresh"
}

// Run implements scheduler.Job
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	companies, err := j.companies.ListActiveCompanies()
	if err != nil {
		return err
	}

	start := time.Now()
	failures := 0

	for _, company := range companies {
		if ctx.Err() != nil {
			j.log.Warn().Int("remaining", len(companies)-failures).Msg("Refresh timed out")
			return ctx.Err()
		}

		if _, err := j.analysis.Sync(company.Symbol); err != nil {
			j.log.Warn().Err(err).Str("symbol", company.Symbol).Msg("Statement sync failed")
			failures++
			continue
		}

		if _, err := j.analysis.Analyze(ctx, company.Symbol, j.cfg, valuation.Overrides{}); err != nil {
			j.log.Warn().Err(err).Str("symbol", company.Symbol).Msg("Revaluation failed")
			failures++
		}
	}

	j.log.Info().
		Int("companies", len(companies)).
		Int("failures", failures).
		Dur("elapsed", time.Since(start)).
		Msg("Valuation refresh complete")
	return nil
}
