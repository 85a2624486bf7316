package valuation

import (
	"math"

	"github.com/aristath/intrinsic/pkg/formulas"
)

// Summarize reduces a completed run to its distribution summary.
//
// Recommendation bands are open on the lower side: a probability of
// exactly 0.80 falls into the BUY band, not STRONG BUY. The convention
// is pinned by tests.
func Summarize(run *RunResult) DistributionSummary {
	outcomes := run.Outcomes
	price := run.Baseline.CurrentPrice

	summary := DistributionSummary{
		Symbol:        run.Baseline.Symbol,
		RunID:         run.RunID,
		Trials:        len(outcomes),
		CurrentPrice:  price,
		Mean:          formulas.Mean(outcomes),
		Median:        formulas.Median(outcomes),
		StdDev:        formulas.StdDev(outcomes),
		P10:           formulas.Percentile(outcomes, 10),
		P25:           formulas.Percentile(outcomes, 25),
		P75:           formulas.Percentile(outcomes, 75),
		P90:           formulas.Percentile(outcomes, 90),
		LowConfidence: run.Baseline.LowConfidence,
	}

	above := 0
	for _, fv := range outcomes {
		if fv > price {
			above++
		}
	}
	if len(outcomes) > 0 {
		summary.ProbUndervalued = float64(above) / float64(len(outcomes))
		summary.GuardFraction = float64(run.GuardCount) / float64(len(outcomes))
	}

	if price > 0 {
		summary.ExpectedUpside = (summary.Mean - price) / price
		summary.MedianUpside = (summary.Median - price) / price
	}

	summary.Recommendation = RecommendationFor(summary.ProbUndervalued)
	return summary
}

// RecommendationFor maps probability-undervalued to the discrete
// signal. Monotonically non-increasing across the five bands.
func RecommendationFor(probUndervalued float64) Recommendation {
	switch {
	case probUndervalued > 0.80:
		return StrongBuy
	case probUndervalued > 0.65:
		return Buy
	case probUndervalued > 0.50:
		return Hold
	case probUndervalued > 0.35:
		return Sell
	default:
		return StrongSell
	}
}

// HistogramBin is one bucket of the outcome distribution
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets outcomes into equal-width bins for charting.
// Values equal to the upper edge land in the last bin.
func Histogram(outcomes []float64, bins int) []HistogramBin {
	if len(outcomes) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := outcomes[0], outcomes[0]
	for _, v := range outcomes {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []HistogramBin{{Low: lo, High: hi, Count: len(outcomes)}}
	}

	width := (hi - lo) / float64(bins)
	result := make([]HistogramBin, bins)
	for i := range result {
		result[i] = HistogramBin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}

	for _, v := range outcomes {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}

	return result
}
