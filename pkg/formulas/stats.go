package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation of a slice of
// float64 values. Population (not sample) variance matches the
// historical-volatility convention used throughout the valuation code.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	mean := stat.Mean(data, nil)
	var ss float64
	for _, v := range data {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(data)))
}

// Percentile returns the p-th percentile (p in [0, 100]) of data using
// linear interpolation between order statistics: rank = p/100 * (n-1),
// interpolated between the surrounding sorted values.
//
// gonum's stat.Quantile supports Empirical and LinInterp cumulant
// kinds, but both follow the empirical-CDF convention rather than the
// order-statistic interpolation the valuation reports are defined
// against, so the interpolation is done directly here.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Median returns the 50th percentile of data
func Median(data []float64) float64 {
	return Percentile(data, 50)
}

// GrowthRates converts a value series to period-over-period growth
// rates. Pairs where either value is non-positive are skipped, since a
// growth rate across a sign change is not meaningful.
func GrowthRates(values []float64) []float64 {
	rates := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 && values[i] > 0 {
			rates = append(rates, (values[i]-values[i-1])/values[i-1])
		}
	}
	return rates
}

// CAGR calculates the compound annual growth rate from the first to
// the last value of a series, annualized over periods elapsed.
// Returns nil when fewer than 2 values are present or the first value
// is non-positive (the ratio is undefined).
func CAGR(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	first := values[0]
	last := values[len(values)-1]
	if first <= 0 || last <= 0 {
		return nil
	}

	years := float64(len(values) - 1)
	cagr := math.Pow(last/first, 1/years) - 1
	return &cagr
}

// Covariance calculates the covariance between two equal-length series
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Variance calculates the sample variance of a series
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}
