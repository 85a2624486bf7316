package formulas

import "math"

// tradingDaysPerYear is the annualization base for daily close series
const tradingDaysPerYear = 252

// Returns converts a price series to simple period-over-period
// returns. Bars with a non-positive previous close are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		out = append(out, prices[i]/prices[i-1]-1)
	}
	return out
}

// AnnualizedVolatility annualizes the standard deviation of daily
// returns by sqrt(252).
func AnnualizedVolatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(tradingDaysPerYear)
}

// SharpeRatio calculates the annualized Sharpe ratio from daily
// returns. Returns nil when there are too few observations or the
// return series has no variance.
func SharpeRatio(returns []float64, riskFreeRate float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	stdDev := StdDev(returns)
	if stdDev == 0 {
		return nil
	}

	periodicRiskFree := riskFreeRate / tradingDaysPerYear
	sharpe := (Mean(returns) - periodicRiskFree) / stdDev * math.Sqrt(tradingDaysPerYear)
	return &sharpe
}

// MaxDrawdown calculates the largest peak-to-trough loss in a price
// series as a positive fraction (0.25 means a 25% loss from peak).
// Returns nil with fewer than 2 prices.
func MaxDrawdown(prices []float64) *float64 {
	if len(prices) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := prices[0]

	for _, price := range prices {
		if price > peak {
			peak = price
		}
		if peak > 0 {
			drawdown := (peak - price) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return &maxDrawdown
}
