package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/internal/modules/valuation"
)

const dateFormat = "2006-01-02"

// Repository persists companies, snapshot series and valuation
// summaries.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a snapshots repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// UpsertCompany registers or reactivates a tracked company
func (r *Repository) UpsertCompany(symbol, name string) error {
	query := `
		INSERT INTO companies (symbol, name, active, last_updated)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, active = 1, last_updated = excluded.last_updated
	`
	_, err := r.db.Exec(query, symbol, name, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", symbol, err)
	}
	return nil
}

// ListActiveCompanies returns all tracked companies
func (r *Repository) ListActiveCompanies() ([]domain.Company, error) {
	rows, err := r.db.Query(`SELECT id, symbol, COALESCE(name, ''), active, COALESCE(last_updated, '') FROM companies WHERE active = 1 ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		var updated string
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &c.Active, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		c.LastUpdated, _ = time.Parse(time.RFC3339, updated)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// SaveSnapshots stores a snapshot series, replacing any existing rows
// for the same (symbol, date).
func (r *Repository) SaveSnapshots(snapshots []domain.FinancialSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO financial_snapshots (
			symbol, date, revenue, cost_of_revenue, ebit, ebitda, depreciation,
			interest_expense, net_income, cash, receivables, inventory,
			current_assets, total_assets, payables, current_liabilities,
			total_debt, equity, retained_earnings, operating_cash_flow,
			capex, free_cash_flow, shares_outstanding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			revenue = excluded.revenue,
			cost_of_revenue = excluded.cost_of_revenue,
			ebit = excluded.ebit,
			ebitda = excluded.ebitda,
			depreciation = excluded.depreciation,
			interest_expense = excluded.interest_expense,
			net_income = excluded.net_income,
			cash = excluded.cash,
			receivables = excluded.receivables,
			inventory = excluded.inventory,
			current_assets = excluded.current_assets,
			total_assets = excluded.total_assets,
			payables = excluded.payables,
			current_liabilities = excluded.current_liabilities,
			total_debt = excluded.total_debt,
			equity = excluded.equity,
			retained_earnings = excluded.retained_earnings,
			operating_cash_flow = excluded.operating_cash_flow,
			capex = excluded.capex,
			free_cash_flow = excluded.free_cash_flow,
			shares_outstanding = excluded.shares_outstanding
	`

	for _, s := range snapshots {
		_, err := tx.Exec(query,
			s.Symbol, s.Date.Format(dateFormat), s.Revenue, s.CostOfRevenue,
			s.EBIT, s.EBITDA, s.Depreciation, s.InterestExpense, s.NetIncome,
			s.Cash, s.Receivables, s.Inventory, s.CurrentAssets, s.TotalAssets,
			s.Payables, s.CurrentLiabilities, s.TotalDebt, s.Equity,
			s.RetainedEarnings, s.OperatingCashFlow, s.CapEx, s.FreeCashFlow,
			s.SharesOutstanding,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot %s/%s: %w", s.Symbol, s.Date.Format(dateFormat), err)
		}
	}

	return tx.Commit()
}

// History returns a company's snapshot series in chronological order
func (r *Repository) History(symbol string) ([]domain.FinancialSnapshot, error) {
	query := `
		SELECT symbol, date, revenue, cost_of_revenue, ebit, ebitda, depreciation,
		       interest_expense, net_income, cash, receivables, inventory,
		       current_assets, total_assets, payables, current_liabilities,
		       total_debt, equity, retained_earnings, operating_cash_flow,
		       capex, free_cash_flow, shares_outstanding
		FROM financial_snapshots
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", symbol, err)
	}
	defer rows.Close()

	var snapshots []domain.FinancialSnapshot
	for rows.Next() {
		var s domain.FinancialSnapshot
		var date string
		err := rows.Scan(
			&s.Symbol, &date, &s.Revenue, &s.CostOfRevenue, &s.EBIT, &s.EBITDA,
			&s.Depreciation, &s.InterestExpense, &s.NetIncome, &s.Cash,
			&s.Receivables, &s.Inventory, &s.CurrentAssets, &s.TotalAssets,
			&s.Payables, &s.CurrentLiabilities, &s.TotalDebt, &s.Equity,
			&s.RetainedEarnings, &s.OperatingCashFlow, &s.CapEx,
			&s.FreeCashFlow, &s.SharesOutstanding,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Date, _ = time.Parse(dateFormat, date)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// SaveSummary appends a completed run's distribution summary
func (r *Repository) SaveSummary(s valuation.DistributionSummary) error {
	query := `
		INSERT INTO valuation_summaries (
			symbol, run_id, trials, current_price, mean, median, std_dev,
			p10, p25, p75, p90, prob_undervalued, expected_upside,
			median_upside, recommendation, guard_fraction, low_confidence,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	lowConfidence := 0
	if s.LowConfidence {
		lowConfidence = 1
	}

	_, err := r.db.Exec(query,
		s.Symbol, s.RunID, s.Trials, s.CurrentPrice, s.Mean, s.Median,
		s.StdDev, s.P10, s.P25, s.P75, s.P90, s.ProbUndervalued,
		s.ExpectedUpside, s.MedianUpside, string(s.Recommendation),
		s.GuardFraction, lowConfidence, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary for %s: %w", s.Symbol, err)
	}
	return nil
}

// LatestSummary returns a company's most recent summary, or nil when
// none has been stored.
func (r *Repository) LatestSummary(symbol string) (*valuation.DistributionSummary, error) {
	query := `
		SELECT symbol, run_id, trials, current_price, mean, median, std_dev,
		       p10, p25, p75, p90, prob_undervalued, expected_upside,
		       median_upside, recommendation, guard_fraction, low_confidence
		FROM valuation_summaries
		WHERE symbol = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	row := r.db.QueryRow(query, symbol)

	var s valuation.DistributionSummary
	var recommendation string
	var lowConfidence int
	err := row.Scan(
		&s.Symbol, &s.RunID, &s.Trials, &s.CurrentPrice, &s.Mean, &s.Median,
		&s.StdDev, &s.P10, &s.P25, &s.P75, &s.P90, &s.ProbUndervalued,
		&s.ExpectedUpside, &s.MedianUpside, &recommendation,
		&s.GuardFraction, &lowConfidence,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary for %s: %w", symbol, err)
	}

	s.Recommendation = valuation.Recommendation(recommendation)
	s.LowConfidence = lowConfidence != 0
	return &s, nil
}

// LatestSummaries returns the most recent summary per tracked company
func (r *Repository) LatestSummaries() ([]valuation.DistributionSummary, error) {
	companies, err := r.ListActiveCompanies()
	if err != nil {
		return nil, err
	}

	var summaries []valuation.DistributionSummary
	for _, c := range companies {
		s, err := r.LatestSummary(c.Symbol)
		if err != nil {
			return nil, err
		}
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	return summaries, nil
}
