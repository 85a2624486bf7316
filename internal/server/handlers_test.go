package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/aristath/intrinsic/internal/config"
	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/internal/events"
	"github.com/aristath/intrinsic/internal/modules/comparison"
	"github.com/aristath/intrinsic/internal/modules/market"
	"github.com/aristath/intrinsic/internal/modules/snapshots"
	"github.com/aristath/intrinsic/internal/modules/valuation"
	"github.com/aristath/intrinsic/internal/services"
)

type fakeSource struct {
	statements map[string][]domain.FinancialSnapshot
	quotes     map[string]domain.Quote
}

func (f *fakeSource) Quote(symbol string) (*domain.Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	return &q, nil
}

func (f *fakeSource) StatementHistory(symbol string) ([]domain.FinancialSnapshot, error) {
	history, ok := f.statements[symbol]
	if !ok {
		return nil, fmt.Errorf("no statements for %s", symbol)
	}
	return history, nil
}

func (f *fakeSource) DailyCloses(symbol string, rangeYears int) ([]float64, error) {
	return nil, fmt.Errorf("no closes for %s", symbol)
}

func snapshotsFor(symbol string, fcf ...float64) []domain.FinancialSnapshot {
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
			FreeCashFlow:       v,
			SharesOutstanding:  100,
		}
	}
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, snapshots.InitSchema(db))

	log := zerolog.Nop()
	repo := snapshots.NewRepository(db, log)

	source := &fakeSource{
		statements: map[string][]domain.FinancialSnapshot{
			"ACME": snapshotsFor("ACME", 100, 110, 121, 133.1),
			"ZERO": snapshotsFor("ZERO", -10, -12),
		},
		quotes: map[string]domain.Quote{
			"ACME": {Symbol: "ACME", Name: "Acme Corp", Price: 45, Beta: 1.2},
			"ZERO": {Symbol: "ZERO", Name: "Zero Inc", Price: 10, Beta: 0.9},
		},
	}

	analysis := services.NewAnalysisService(
		source,
		repo,
		market.NewService(log),
		valuation.NewService(log),
		events.NewManager(log),
		services.AnalysisOptions{},
		log,
	)

	return New(Config{
		Port:       0,
		Log:        log,
		Config:     &config.Config{Trials: 400, HorizonYears: 5, Port: 0},
		Analysis:   analysis,
		Comparison: comparison.NewService(analysis, log),
		Repo:       repo,
	})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/valuations/ACME", `{"seed": 42}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report services.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ACME", report.Symbol)
	assert.Equal(t, 400, report.Summary.Trials)
	assert.NotEmpty(t, report.Summary.Recommendation)
	assert.Len(t, report.Sensitivity.Scenarios, 3)
}

func TestAnalyzeLowercaseSymbol(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/valuations/acme", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyzeInsufficientData(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/valuations/ZERO", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeInvalidConfig(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/valuations/ACME", `{"trials": -5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributionEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/valuations/ACME/distribution", `{"seed": 7, "bins": 10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Histogram []valuation.HistogramBin `json:"histogram"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Histogram, 10)
}

func TestLatestSummaryLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/valuations/ACME", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/valuations/ACME", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/valuations/ACME", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary valuation.DistributionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "ACME", summary.Symbol)
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/compare", `{"symbols": ["acme", "zero"], "seed": 3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result comparison.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "ACME", result.Entries[0].Symbol)
	assert.Contains(t, result.Failed, "ZERO")
}

func TestCompareRequiresTwoSymbols(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/compare", `{"symbols": ["ACME"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncAndHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/companies/ACME/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/companies/ACME/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/companies/ACME/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []domain.FinancialSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 4)

	rec = doRequest(t, s, http.MethodGet, "/api/companies/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var companies []domain.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &companies))
	require.Len(t, companies, 1)
	assert.Equal(t, "ACME", companies[0].Symbol)
}
