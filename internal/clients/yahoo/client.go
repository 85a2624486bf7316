package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
)

// Client is a Yahoo Finance API client used to pull quotes, statement
// history and daily closes for tracked companies.
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// Quote fetches a market snapshot for the symbol.
func (c *Client) Quote(symbol string) (*domain.Quote, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,longName,shortName,regularMarketPrice,beta,marketCap,sharesOutstanding")

	body, err := c.get("https://query1.finance.yahoo.com/v7/finance/quote?" + params.Encode())
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}
	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	info := result.QuoteResponse.Result[0]

	name := getString(info, "longName", "")
	if name == "" {
		name = getString(info, "shortName", symbol)
	}

	return &domain.Quote{
		Symbol:            symbol,
		Name:              name,
		Price:             getFloat64OrZero(info, "regularMarketPrice"),
		Beta:              getFloat64OrZero(info, "beta"),
		MarketCap:         getFloat64OrZero(info, "marketCap"),
		SharesOutstanding: getFloat64OrZero(info, "sharesOutstanding"),
	}, nil
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory struct {
				IncomeStatementHistory []map[string]interface{} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			BalanceSheetHistory struct {
				BalanceSheetStatements []map[string]interface{} `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
			CashflowStatementHistory struct {
				CashflowStatements []map[string]interface{} `json:"cashflowStatements"`
			} `json:"cashflowStatementHistory"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

// StatementHistory fetches annual income, balance sheet and cash flow
// statements and joins them into per-period snapshots, oldest first.
// Periods missing any of the three statements are dropped.
func (c *Client) StatementHistory(symbol string) ([]domain.FinancialSnapshot, error) {
	params := url.Values{}
	params.Add("modules", "incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory")

	reqURL := fmt.Sprintf("https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?%s",
		url.PathEscape(symbol), params.Encode())

	body, err := c.get(reqURL)
	if err != nil {
		return nil, err
	}

	var result quoteSummaryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse statements response: %w", err)
	}
	if result.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteSummary.Error)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no statement data returned for symbol %s", symbol)
	}

	mods := result.QuoteSummary.Result[0]

	snapshots := map[int64]*domain.FinancialSnapshot{}

	snap := func(stmt map[string]interface{}) *domain.FinancialSnapshot {
		end := rawValue(stmt, "endDate")
		if end == nil {
			return nil
		}
		ts := int64(*end)
		s, ok := snapshots[ts]
		if !ok {
			s = &domain.FinancialSnapshot{
				Symbol: symbol,
				Date:   time.Unix(ts, 0).UTC(),
			}
			snapshots[ts] = s
		}
		return s
	}

	for _, stmt := range mods.IncomeStatementHistory.IncomeStatementHistory {
		s := snap(stmt)
		if s == nil {
			continue
		}
		s.Revenue = rawOrZero(stmt, "totalRevenue")
		s.CostOfRevenue = rawOrZero(stmt, "costOfRevenue")
		s.EBIT = rawOrZero(stmt, "ebit")
		s.InterestExpense = math.Abs(rawOrZero(stmt, "interestExpense"))
		s.NetIncome = rawOrZero(stmt, "netIncome")
	}

	for _, stmt := range mods.BalanceSheetHistory.BalanceSheetStatements {
		s := snap(stmt)
		if s == nil {
			continue
		}
		s.Cash = rawOrZero(stmt, "cash")
		s.Receivables = rawOrZero(stmt, "netReceivables")
		s.Inventory = rawOrZero(stmt, "inventory")
		s.CurrentAssets = rawOrZero(stmt, "totalCurrentAssets")
		s.TotalAssets = rawOrZero(stmt, "totalAssets")
		s.Payables = rawOrZero(stmt, "accountsPayable")
		s.CurrentLiabilities = rawOrZero(stmt, "totalCurrentLiabilities")
		s.TotalDebt = rawOrZero(stmt, "shortLongTermDebt") + rawOrZero(stmt, "longTermDebt")
		s.Equity = rawOrZero(stmt, "totalStockholderEquity")
		s.RetainedEarnings = rawOrZero(stmt, "retainedEarnings")
		s.SharesOutstanding = rawOrZero(stmt, "commonStock")
	}

	for _, stmt := range mods.CashflowStatementHistory.CashflowStatements {
		s := snap(stmt)
		if s == nil {
			continue
		}
		s.Depreciation = rawOrZero(stmt, "depreciation")
		s.OperatingCashFlow = rawOrZero(stmt, "totalCashFromOperatingActivities")
		s.CapEx = rawOrZero(stmt, "capitalExpenditures")
	}

	out := make([]domain.FinancialSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		s.EBITDA = s.EBIT + s.Depreciation
		s.FreeCashFlow = s.OperatingCashFlow - math.Abs(s.CapEx)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	c.log.Debug().Str("symbol", symbol).Int("periods", len(out)).Msg("Fetched statement history")
	return out, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// DailyCloses fetches daily closing prices for the last rangeYears
// years, oldest first. Missing bars are skipped.
func (c *Client) DailyCloses(symbol string, rangeYears int) ([]float64, error) {
	if rangeYears <= 0 {
		rangeYears = 1
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", fmt.Sprintf("%dy", rangeYears))

	reqURL := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?%s",
		url.PathEscape(symbol), params.Encode())

	body, err := c.get(reqURL)
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no price data returned for symbol %s", symbol)
	}

	raw := result.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	return closes, nil
}

func (c *Client) get(reqURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
