package domain

import "time"

// Period represents a reporting frequency
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// FinancialSnapshot holds one reporting period's extracted figures.
// Snapshots are immutable once produced by the ingestion layer and are
// always handled as a chronologically ordered slice.
type FinancialSnapshot struct {
	Symbol             string    `json:"symbol"`
	Date               time.Time `json:"date"`
	Revenue            float64   `json:"revenue"`
	CostOfRevenue      float64   `json:"cost_of_revenue"`
	EBIT               float64   `json:"ebit"`
	EBITDA             float64   `json:"ebitda"`
	Depreciation       float64   `json:"depreciation"`
	InterestExpense    float64   `json:"interest_expense"`
	NetIncome          float64   `json:"net_income"`
	Cash               float64   `json:"cash"`
	Receivables        float64   `json:"receivables"`
	Inventory          float64   `json:"inventory"`
	CurrentAssets      float64   `json:"current_assets"`
	TotalAssets        float64   `json:"total_assets"`
	Payables           float64   `json:"payables"`
	CurrentLiabilities float64   `json:"current_liabilities"`
	TotalDebt          float64   `json:"total_debt"`
	Equity             float64   `json:"equity"`
	RetainedEarnings   float64   `json:"retained_earnings"`
	OperatingCashFlow  float64   `json:"operating_cash_flow"`
	CapEx              float64   `json:"capex"`
	FreeCashFlow       float64   `json:"free_cash_flow"`
	SharesOutstanding  float64   `json:"shares_outstanding"`
}

// NetDebt returns total debt minus cash for the period
func (s FinancialSnapshot) NetDebt() float64 {
	return s.TotalDebt - s.Cash
}

// MarketContext holds market-level inputs for a valuation. The
// ingestion layer validates these before handing them to the core.
type MarketContext struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	Beta         float64 `json:"beta"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	MarketReturn float64 `json:"market_return"`
}

// MarketCap returns the market value of equity implied by the context
// and a share count from the latest snapshot.
func (m MarketContext) MarketCap(shares float64) float64 {
	return m.CurrentPrice * shares
}

// Quote is a point-in-time market snapshot for a listed security.
type Quote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
}

// Company identifies a tracked company
type Company struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	LastUpdated time.Time `json:"last_updated"`
}
