package snapshots

import "database/sql"

// Schema holds the companies, financial snapshot and valuation summary
// tables. Snapshots are keyed by (symbol, date) so re-ingestion
// replaces a period instead of duplicating it.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
    id INTEGER PRIMARY KEY,
    symbol TEXT UNIQUE NOT NULL,
    name TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS financial_snapshots (
    id INTEGER PRIMARY KEY,
    symbol TEXT NOT NULL,
    date TEXT NOT NULL,
    revenue REAL NOT NULL DEFAULT 0,
    cost_of_revenue REAL NOT NULL DEFAULT 0,
    ebit REAL NOT NULL DEFAULT 0,
    ebitda REAL NOT NULL DEFAULT 0,
    depreciation REAL NOT NULL DEFAULT 0,
    interest_expense REAL NOT NULL DEFAULT 0,
    net_income REAL NOT NULL DEFAULT 0,
    cash REAL NOT NULL DEFAULT 0,
    receivables REAL NOT NULL DEFAULT 0,
    inventory REAL NOT NULL DEFAULT 0,
    current_assets REAL NOT NULL DEFAULT 0,
    total_assets REAL NOT NULL DEFAULT 0,
    payables REAL NOT NULL DEFAULT 0,
    current_liabilities REAL NOT NULL DEFAULT 0,
    total_debt REAL NOT NULL DEFAULT 0,
    equity REAL NOT NULL DEFAULT 0,
    retained_earnings REAL NOT NULL DEFAULT 0,
    operating_cash_flow REAL NOT NULL DEFAULT 0,
    capex REAL NOT NULL DEFAULT 0,
    free_cash_flow REAL NOT NULL DEFAULT 0,
    shares_outstanding REAL NOT NULL DEFAULT 0,
    UNIQUE(symbol, date)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_date ON financial_snapshots(symbol, date);

CREATE TABLE IF NOT EXISTS valuation_summaries (
    id INTEGER PRIMARY KEY,
    symbol TEXT NOT NULL,
    run_id TEXT NOT NULL,
    trials INTEGER NOT NULL,
    current_price REAL NOT NULL,
    mean REAL NOT NULL,
    median REAL NOT NULL,
    std_dev REAL NOT NULL,
    p10 REAL NOT NULL,
    p25 REAL NOT NULL,
    p75 REAL NOT NULL,
    p90 REAL NOT NULL,
    prob_undervalued REAL NOT NULL,
    expected_upside REAL NOT NULL,
    median_upside REAL NOT NULL,
    recommendation TEXT NOT NULL,
    guard_fraction REAL NOT NULL,
    low_confidence INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_symbol ON valuation_summaries(symbol, created_at);
`

// InitSchema ensures the module's tables exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
