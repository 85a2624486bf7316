package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/internal/events"
	"github.com/aristath/intrinsic/internal/modules/market"
	"github.com/aristath/intrinsic/internal/modules/snapshots"
	"github.com/aristath/intrinsic/internal/modules/valuation"
)

// fakeSource serves canned market data so the pipeline can run
// without network access.
type fakeSource struct {
	statements []domain.FinancialSnapshot
	quote      domain.Quote
	closes     map[string][]float64
	quoteErr   error
}

func (f *fakeSource) Quote(symbol string) (*domain.Quote, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := f.quote
	q.Symbol = symbol
	return &q, nil
}

func (f *fakeSource) StatementHistory(symbol string) ([]domain.FinancialSnapshot, error) {
	return f.statements, nil
}

func (f *fakeSource) DailyCloses(symbol string, rangeYears int) ([]float64, error) {
	closes, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no closes for %s", symbol)
	}
	return closes, nil
}

func testStatements(symbol string, fcf ...float64) []domain.FinancialSnapshot {
	out := make([]domain.FinancialSnapshot, len(fcf))
	for i, v := range fcf {
		out[i] = domain.FinancialSnapshot{
			Symbol:             symbol,
			Date:               time.Date(2020+i, 12, 31, 0, 0, 0, 0, time.UTC),
			Revenue:            1000,
			EBIT:               200,
			InterestExpense:    20,
			NetIncome:          140,
			Cash:               50,
			TotalDebt:          400,
			Equity:             600,
			CurrentAssets:      300,
			TotalAssets:        1200,
			CurrentLiabilities: 150,
			RetainedEarnings:   250,
			OperatingCashFlow:  v + 30,
			CapEx:              -30,
			FreeCashFlow:       v,
			SharesOutstanding:  100,
		}
	}
	return out
}

func newTestService(t *testing.T, source *fakeSource) *AnalysisService {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, snapshots.InitSchema(db))

	log := zerolog.Nop()
	repo := snapshots.NewRepository(db, log)

	return NewAnalysisService(
		source,
		repo,
		market.NewService(log),
		valuation.NewService(log),
		events.NewManager(log),
		AnalysisOptions{},
		log,
	)
}

func defaultSource() *fakeSource {
	return &fakeSource{
		statements: testStatements("ACME", 100, 110, 121, 133.1),
		quote:      domain.Quote{Name: "Acme Corp", Price: 45, Beta: 1.2},
		closes:     map[string][]float64{},
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	source := defaultSource()
	svc := newTestService(t, source)

	cfg := valuation.DefaultConfig()
	cfg.Trials = 500
	seed := uint64(42)
	cfg.Seed = &seed

	report, err := svc.Analyze(context.Background(), "ACME", cfg, valuation.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "ACME", report.Symbol)
	assert.Equal(t, 45.0, report.Summary.CurrentPrice)
	assert.Equal(t, 500, report.Summary.Trials)
	assert.NotEmpty(t, report.Summary.Recommendation)
	assert.Len(t, report.Sensitivity.Scenarios, 3)
	assert.Positive(t, report.DCF.FairValue)
	assert.NotNil(t, report.Ratios.CurrentRatio)
	assert.NotNil(t, report.AltmanZ)
	assert.Len(t, report.Outcomes, 500)

	// No stock close history: falls back to the quote's published beta.
	assert.Equal(t, 1.2, report.Baseline.Beta)
}

func TestAnalyzeSyncsHistoryOnFirstUse(t *testing.T) {
	source := defaultSource()
	svc := newTestService(t, source)

	history, err := svc.History("ACME")
	require.NoError(t, err)
	assert.Len(t, history, 4)

	// Second call is served from the store; mutate the source to prove it.
	source.statements = nil
	history, err = svc.History("ACME")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestAnalyzeQuoteFailure(t *testing.T) {
	source := defaultSource()
	source.quoteErr = fmt.Errorf("rate limited")
	svc := newTestService(t, source)

	_, err := svc.Analyze(context.Background(), "ACME", valuation.DefaultConfig(), valuation.Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestMarketContextRegressesBeta(t *testing.T) {
	source := defaultSource()
	// Stock moves exactly 2x the index: beta should come out near 2.
	index := make([]float64, 40)
	stock := make([]float64, 40)
	index[0], stock[0] = 100, 100
	for i := 1; i < 40; i++ {
		step := 0.01
		if i%2 == 0 {
			step = -0.008
		}
		index[i] = index[i-1] * (1 + step)
		stock[i] = stock[i-1] * (1 + 2*step)
	}
	source.closes = map[string][]float64{"ACME": stock, "^GSPC": index}
	svc := newTestService(t, source)

	ctx, quote, err := svc.MarketContext("ACME")
	require.NoError(t, err)
	assert.Equal(t, 45.0, quote.Price)
	assert.InDelta(t, 2.0, ctx.Beta, 0.05)
}
