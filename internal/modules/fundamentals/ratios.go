package fundamentals

import (
	"math"

	"github.com/aristath/intrinsic/internal/domain"
)

// Zone labels for the Altman Z-score
const (
	ZoneSafe     = "Safe"
	ZoneGrey     = "Grey"
	ZoneDistress = "Distress"
)

// Ratios holds single-period accounting ratios. Nil means the ratio is
// undefined for the period (zero denominator).
type Ratios struct {
	// Valuation
	PE         *float64 `json:"pe,omitempty"`
	PB         *float64 `json:"pb,omitempty"`
	EVToEBITDA *float64 `json:"ev_to_ebitda,omitempty"`

	// Profitability
	ROE       *float64 `json:"roe,omitempty"`
	ROA       *float64 `json:"roa,omitempty"`
	NetMargin *float64 `json:"net_margin,omitempty"`

	// Liquidity
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`

	// Leverage
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`

	// Cash flow
	FreeCashFlow float64 `json:"free_cash_flow"`

	// Credit risk
	AltmanZ    *float64 `json:"altman_z,omitempty"`
	AltmanZone string   `json:"altman_zone,omitempty"`
}

// Calculate computes all single-period ratios for a snapshot at the
// given share price and tax rate.
func Calculate(s domain.FinancialSnapshot, price, taxRate float64) Ratios {
	marketCap := price * s.SharesOutstanding

	r := Ratios{
		PE:               ratio(price, div(s.NetIncome, s.SharesOutstanding)),
		PB:               ratio(price, div(s.Equity, s.SharesOutstanding)),
		EVToEBITDA:       div(marketCap+s.TotalDebt-s.Cash, s.EBITDA),
		ROE:              div(s.NetIncome, s.Equity),
		ROA:              div(s.NetIncome, s.TotalAssets),
		NetMargin:        div(s.NetIncome, s.Revenue),
		CurrentRatio:     div(s.CurrentAssets, s.CurrentLiabilities),
		QuickRatio:       div(s.Cash+s.Receivables, s.CurrentLiabilities),
		DebtToEquity:     div(s.TotalDebt, s.Equity),
		InterestCoverage: div(s.EBIT+s.Depreciation, s.InterestExpense),
		FreeCashFlow:     FreeCashFlow(s, taxRate),
	}
	r.AltmanZ, r.AltmanZone = AltmanZScore(s, marketCap)
	return r
}

// FreeCashFlow approximates unlevered free cash flow:
// EBIT(1-tax) + Depreciation - |CapEx|. Working-capital changes are
// not modeled; capex is reported negative by most sources, hence the
// absolute value.
func FreeCashFlow(s domain.FinancialSnapshot, taxRate float64) float64 {
	return s.EBIT*(1-taxRate) + s.Depreciation - math.Abs(s.CapEx)
}

// AltmanZScore computes the classic five-factor Z-score and its zone:
// above 2.99 Safe, above 1.8 Grey, otherwise Distress. Undefined when
// total assets or total liabilities are zero.
func AltmanZScore(s domain.FinancialSnapshot, marketCap float64) (*float64, string) {
	liabilities := s.TotalAssets - s.Equity
	if s.TotalAssets == 0 || liabilities == 0 {
		return nil, ""
	}

	workingCapital := s.Cash + s.Inventory + s.Receivables - s.Payables

	z := 1.2*(workingCapital/s.TotalAssets) +
		1.4*(s.RetainedEarnings/s.TotalAssets) +
		3.3*(s.EBIT/s.TotalAssets) +
		0.6*(marketCap/liabilities) +
		1.0*(s.Revenue/s.TotalAssets)

	zone := ZoneDistress
	if z > 2.99 {
		zone = ZoneSafe
	} else if z > 1.8 {
		zone = ZoneGrey
	}
	return &z, zone
}

// div returns numerator/denominator, nil when the denominator is zero
func div(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// ratio divides by a possibly-undefined denominator
func ratio(numerator float64, denominator *float64) *float64 {
	if denominator == nil || *denominator == 0 {
		return nil
	}
	v := numerator / *denominator
	return &v
}
