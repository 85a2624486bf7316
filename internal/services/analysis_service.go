package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/internal/events"
	"github.com/aristath/intrinsic/internal/modules/fundamentals"
	"github.com/aristath/intrinsic/internal/modules/market"
	"github.com/aristath/intrinsic/internal/modules/valuation"
)

// MarketDataSource provides statements, quotes and price history for a
// symbol. Satisfied by the Yahoo client.
type MarketDataSource interface {
	Quote(symbol string) (*domain.Quote, error)
	StatementHistory(symbol string) ([]domain.FinancialSnapshot, error)
	DailyCloses(symbol string, rangeYears int) ([]float64, error)
}

// SnapshotStore is the persistence surface the analysis service needs.
// Satisfied by the snapshots repository.
type SnapshotStore interface {
	UpsertCompany(symbol, name string) error
	SaveSnapshots(snapshots []domain.FinancialSnapshot) error
	History(symbol string) ([]domain.FinancialSnapshot, error)
	SaveSummary(s valuation.DistributionSummary) error
}

// AnalysisService wires ingestion, market context and the simulation
// into one symbol-level entry point. It is the composition layer the
// HTTP handlers, the CLI and the refresh job all call into.
type AnalysisService struct {
	source    MarketDataSource
	store     SnapshotStore
	market    *market.Service
	valuation *valuation.Service
	events    *events.Manager

	indexSymbol  string
	betaYears    int
	riskFreeRate *float64

	log zerolog.Logger
}

// AnalysisOptions tunes the composition layer, not the simulation.
type AnalysisOptions struct {
	IndexSymbol  string   // benchmark for beta estimation, default ^GSPC
	BetaYears    int      // close-history window for beta, default 2
	RiskFreeRate *float64 // override, nil means the market default
}

// NewAnalysisService creates the analysis composition service
func NewAnalysisService(
	source MarketDataSource,
	store SnapshotStore,
	marketSvc *market.Service,
	valuationSvc *valuation.Service,
	eventManager *events.Manager,
	opts AnalysisOptions,
	log zerolog.Logger,
) *AnalysisService {
	if opts.IndexSymbol == "" {
		opts.IndexSymbol = "^GSPC"
	}
	if opts.BetaYears <= 0 {
		opts.BetaYears = 2
	}
	return &AnalysisService{
		source:       source,
		store:        store,
		market:       marketSvc,
		valuation:    valuationSvc,
		events:       eventManager,
		indexSymbol:  opts.IndexSymbol,
		betaYears:    opts.BetaYears,
		riskFreeRate: opts.RiskFreeRate,
		log:          log.With().Str("service", "analysis").Logger(),
	}
}

// Report bundles everything a full symbol analysis produces.
type Report struct {
	Symbol      string                        `json:"symbol"`
	Quote       domain.Quote                  `json:"quote"`
	Baseline    valuation.BaselineParameters  `json:"baseline"`
	DCF         valuation.DCFResult           `json:"dcf"`
	Summary     valuation.DistributionSummary `json:"summary"`
	Sensitivity valuation.SensitivityResult   `json:"sensitivity"`
	Ratios      fundamentals.Ratios           `json:"ratios"`
	Risk        *market.RiskMetrics           `json:"risk,omitempty"`
	AltmanZ     *float64                      `json:"altman_z,omitempty"`
	AltmanZone  string                        `json:"altman_zone"`
	Outcomes    []float64                     `json:"-"`
}

// Sync fetches the latest statement history for a symbol and persists
// it, registering the company on first sight.
func (s *AnalysisService) Sync(symbol string) ([]domain.FinancialSnapshot, error) {
	s.events.Emit(events.SnapshotSyncStart, "analysis", map[string]interface{}{"symbol": symbol})

	quote, err := s.source.Quote(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	history, err := s.source.StatementHistory(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", symbol, err)
	}

	prior, err := s.store.History(symbol)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertCompany(symbol, quote.Name); err != nil {
		return nil, err
	}
	if err := s.store.SaveSnapshots(history); err != nil {
		return nil, err
	}

	if len(prior) == 0 {
		s.events.Emit(events.CompanyAdded, "analysis", map[string]interface{}{
			"symbol": symbol,
			"name":   quote.Name,
		})
	}

	s.events.Emit(events.SnapshotSyncComplete, "analysis", map[string]interface{}{
		"symbol":  symbol,
		"periods": len(history),
	})
	return history, nil
}

// History returns stored snapshot history, syncing from the source
// when nothing is stored yet.
func (s *AnalysisService) History(symbol string) ([]domain.FinancialSnapshot, error) {
	history, err := s.store.History(symbol)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		return history, nil
	}
	return s.Sync(symbol)
}

// MarketContext builds the market-side inputs for a symbol. Beta is
// regressed against the benchmark index when close history is
// available, falling back to the quote's published beta.
func (s *AnalysisService) MarketContext(symbol string) (domain.MarketContext, *domain.Quote, error) {
	ctx, quote, _, err := s.marketInputs(symbol)
	return ctx, quote, err
}

func (s *AnalysisService) marketInputs(symbol string) (domain.MarketContext, *domain.Quote, []float64, error) {
	quote, err := s.source.Quote(symbol)
	if err != nil {
		return domain.MarketContext{}, nil, nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if quote.Price <= 0 {
		return domain.MarketContext{}, nil, nil, fmt.Errorf("no current price for %s", symbol)
	}

	stockCloses, err := s.source.DailyCloses(symbol, s.betaYears)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("No stock close history, using published beta")
		stockCloses = nil
	}
	indexCloses, err := s.source.DailyCloses(s.indexSymbol, s.betaYears)
	if err != nil {
		s.log.Warn().Err(err).Str("index", s.indexSymbol).Msg("No index close history, using default market return")
		indexCloses = nil
	}

	ctx := s.market.BuildContext(symbol, quote.Price, s.riskFreeRate, stockCloses, indexCloses, float64(s.betaYears))
	if len(stockCloses) == 0 && quote.Beta > 0 {
		ctx.Beta = quote.Beta
	}
	return ctx, quote, stockCloses, nil
}

// Analyze runs the full pipeline for one symbol: history, market
// context, Monte Carlo simulation, single-point DCF sensitivity and
// fundamentals. The distribution summary is persisted before return.
func (s *AnalysisService) Analyze(
	ctx context.Context,
	symbol string,
	cfg valuation.SimulationConfig,
	overrides valuation.Overrides,
) (*Report, error) {
	s.events.Emit(events.ValuationStart, "analysis", map[string]interface{}{"symbol": symbol})

	history, err := s.History(symbol)
	if err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"symbol": symbol})
		return nil, err
	}

	marketCtx, quote, stockCloses, err := s.marketInputs(symbol)
	if err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"symbol": symbol})
		return nil, err
	}

	result, err := s.valuation.Analyze(ctx, history, marketCtx, cfg, overrides)
	if err != nil {
		s.events.EmitError("analysis", err, map[string]interface{}{"symbol": symbol})
		return nil, err
	}

	horizon := cfg.HorizonYears
	if overrides.HorizonYears != nil {
		horizon = *overrides.HorizonYears
	}
	sensitivity, err := valuation.RunSensitivity(result.Baseline, horizon)
	if err != nil {
		return nil, err
	}

	latest := history[len(history)-1]
	ratios := fundamentals.Calculate(latest, quote.Price, result.Baseline.TaxRate)
	zScore, zone := fundamentals.AltmanZScore(latest, marketCtx.MarketCap(latest.SharesOutstanding))
	risk := s.market.Risk(stockCloses, float64(s.betaYears), marketCtx.RiskFreeRate)

	if err := s.store.SaveSummary(result.Summary); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist valuation summary")
	}

	s.events.Emit(events.ValuationComplete, "analysis", map[string]interface{}{
		"symbol":         symbol,
		"recommendation": string(result.Summary.Recommendation),
	})

	return &Report{
		Symbol:      symbol,
		Quote:       *quote,
		Baseline:    result.Baseline,
		DCF:         result.DCF,
		Summary:     result.Summary,
		Sensitivity: sensitivity,
		Ratios:      ratios,
		Risk:        risk,
		AltmanZ:     zScore,
		AltmanZone:  zone,
		Outcomes:    result.Outcomes,
	}, nil
}
