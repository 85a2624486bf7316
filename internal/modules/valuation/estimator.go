package valuation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/pkg/formulas"
)

const (
	// StatutoryTaxRate is substituted when the effective rate cannot be
	// derived from the statements (US federal corporate rate).
	StatutoryTaxRate = 0.21

	// DefaultGrowthVolatility is substituted when the series yields
	// fewer than two usable period-over-period growth observations.
	DefaultGrowthVolatility = 0.10

	// DefaultCostOfDebt is assumed for companies carrying no debt
	DefaultCostOfDebt = 0.05
)

// Estimator derives the stochastic baseline from a historical series.
// Stateless apart from the logger; Estimate is safe for concurrent use.
type Estimator struct {
	log zerolog.Logger
}

// NewEstimator creates a new baseline estimator
func NewEstimator(log zerolog.Logger) *Estimator {
	return &Estimator{log: log.With().Str("component", "estimator").Logger()}
}

// Estimate computes BaselineParameters from a chronologically ordered
// snapshot series (oldest first) and market context. The result is
// computed once per company and shared read-only across trials.
func (e *Estimator) Estimate(snapshots []domain.FinancialSnapshot, market domain.MarketContext) (BaselineParameters, error) {
	if len(snapshots) < 2 {
		return BaselineParameters{}, fmt.Errorf("%w: need at least 2 periods, have %d", ErrInsufficientData, len(snapshots))
	}

	fcf := make([]float64, len(snapshots))
	for i, s := range snapshots {
		fcf[i] = s.FreeCashFlow
	}

	if fcf[0] <= 0 {
		return BaselineParameters{}, fmt.Errorf("%w: starting free cash flow %.2f is non-positive, compound growth undefined", ErrInsufficientData, fcf[0])
	}

	growthMean := formulas.CAGR(fcf)
	if growthMean == nil {
		return BaselineParameters{}, fmt.Errorf("%w: free cash flow series does not support compound growth", ErrInsufficientData)
	}

	latest := snapshots[len(snapshots)-1]

	baseline := BaselineParameters{
		Symbol:            market.Symbol,
		GrowthMean:        *growthMean,
		FreeCashFlow:      latest.FreeCashFlow,
		NetDebt:           latest.NetDebt(),
		SharesOutstanding: latest.SharesOutstanding,
		CurrentPrice:      market.CurrentPrice,
		Beta:              market.Beta,
	}

	// Growth volatility: stddev of period-over-period FCF growth.
	// Pairs spanning a non-positive value are skipped; with fewer than
	// two usable observations the default is substituted.
	rates := formulas.GrowthRates(fcf)
	if len(rates) < 2 {
		baseline.GrowthStdDev = DefaultGrowthVolatility
		baseline.flagLowConfidence("too few growth observations, default volatility substituted")
	} else {
		baseline.GrowthStdDev = formulas.StdDev(rates)
	}

	baseline.TaxRate = e.effectiveTaxRate(latest, &baseline)
	e.estimateWACC(latest, market, &baseline)

	e.log.Debug().
		Str("symbol", market.Symbol).
		Float64("growth_mean", baseline.GrowthMean).
		Float64("growth_std", baseline.GrowthStdDev).
		Float64("wacc", baseline.DiscountRate).
		Float64("tax_rate", baseline.TaxRate).
		Bool("low_confidence", baseline.LowConfidence).
		Msg("Baseline estimated")

	return baseline, nil
}

// effectiveTaxRate implies the tax rate from the latest statements:
// (EBIT - Interest - NetIncome) / (EBIT - Interest), clamped to [0, 1].
// A non-positive denominator triggers the statutory fallback and the
// low-confidence flag rather than a hard failure.
func (e *Estimator) effectiveTaxRate(latest domain.FinancialSnapshot, baseline *BaselineParameters) float64 {
	taxableIncome := latest.EBIT - latest.InterestExpense
	if taxableIncome <= 0 {
		baseline.flagLowConfidence("tax denominator non-positive, statutory rate substituted")
		return StatutoryTaxRate
	}

	rate := (taxableIncome - latest.NetIncome) / taxableIncome
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// estimateWACC blends CAPM cost of equity with after-tax cost of debt,
// weighted by market value of equity and book value of debt.
func (e *Estimator) estimateWACC(latest domain.FinancialSnapshot, market domain.MarketContext, baseline *BaselineParameters) {
	baseline.CostOfEquity = market.RiskFreeRate + market.Beta*(market.MarketReturn-market.RiskFreeRate)

	baseline.CostOfDebt = DefaultCostOfDebt
	if latest.TotalDebt > 0 {
		baseline.CostOfDebt = latest.InterestExpense / latest.TotalDebt
	}

	marketCap := market.MarketCap(latest.SharesOutstanding)
	totalValue := marketCap + latest.TotalDebt

	weightEquity := 1.0
	weightDebt := 0.0
	if totalValue > 0 {
		weightEquity = marketCap / totalValue
		weightDebt = latest.TotalDebt / totalValue
	}

	baseline.DiscountRate = weightEquity*baseline.CostOfEquity +
		weightDebt*baseline.CostOfDebt*(1-baseline.TaxRate)
}

func (b *BaselineParameters) flagLowConfidence(reason string) {
	b.LowConfidence = true
	b.LowConfidenceReasons = append(b.LowConfidenceReasons, reason)
}
