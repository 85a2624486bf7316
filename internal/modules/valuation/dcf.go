package valuation

import "math"

// DCFResult holds one deterministic single-point valuation
type DCFResult struct {
	Symbol          string  `json:"symbol"`
	FairValue       float64 `json:"fair_value"`
	CurrentPrice    float64 `json:"current_price"`
	UpsidePct       float64 `json:"upside_pct"`
	GrowthRate      float64 `json:"growth_rate"`
	TerminalGrowth  float64 `json:"terminal_growth"`
	DiscountRate    float64 `json:"discount_rate"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
}

// SinglePointDCF runs the deterministic valuation used as the sanity
// baseline for the simulation: one projection at fixed growth, terminal
// growth and the baseline discount rate. The same guard as the sampler
// applies when the discount rate does not clear terminal growth.
func SinglePointDCF(baseline BaselineParameters, growth, terminalGrowth float64, horizonYears int) (DCFResult, error) {
	if baseline.SharesOutstanding <= 0 {
		return DCFResult{}, ErrInvalidShareCount
	}

	draw := Draw{
		Growth:         growth,
		DiscountRate:   baseline.DiscountRate,
		TerminalGrowth: terminalGrowth,
	}
	if draw.DiscountRate <= draw.TerminalGrowth {
		draw.TerminalGrowth = draw.DiscountRate - guardEpsilon
	}

	path, terminalValue := ProjectCashFlows(baseline.FreeCashFlow, draw, horizonYears)

	presentValue := 0.0
	for t, fcf := range path {
		presentValue += fcf / math.Pow(1+draw.DiscountRate, float64(t+1))
	}
	presentValue += terminalValue / math.Pow(1+draw.DiscountRate, float64(len(path)))

	equityValue := presentValue - baseline.NetDebt
	fairValue := equityValue / baseline.SharesOutstanding

	result := DCFResult{
		Symbol:          baseline.Symbol,
		FairValue:       fairValue,
		CurrentPrice:    baseline.CurrentPrice,
		GrowthRate:      draw.Growth,
		TerminalGrowth:  draw.TerminalGrowth,
		DiscountRate:    draw.DiscountRate,
		EnterpriseValue: presentValue,
		EquityValue:     equityValue,
	}
	if baseline.CurrentPrice > 0 {
		result.UpsidePct = (fairValue - baseline.CurrentPrice) / baseline.CurrentPrice * 100
	}

	return result, nil
}

// BaselineGrowth returns the default deterministic growth assumption:
// 80% of historical growth, floored at 3%.
func BaselineGrowth(historicalGrowth float64) float64 {
	return math.Max(0.03, historicalGrowth*0.8)
}
