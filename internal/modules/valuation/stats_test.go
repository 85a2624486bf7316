package valuation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryForOutcomes(t *testing.T, outcomes []float64, price float64, guardCount int) DistributionSummary {
	t.Helper()
	baseline := testBaseline()
	baseline.CurrentPrice = price
	return Summarize(&RunResult{
		RunID:      "test-run",
		Outcomes:   outcomes,
		GuardCount: guardCount,
		Baseline:   baseline,
	})
}

func TestSummarize_PercentilesOrdered(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 5000
	cfg.Seed = seedPtr(11)

	run, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	s := Summarize(run)
	assert.LessOrEqual(t, s.P10, s.P25)
	assert.LessOrEqual(t, s.P25, s.Median)
	assert.LessOrEqual(t, s.Median, s.P75)
	assert.LessOrEqual(t, s.P75, s.P90)
	assert.GreaterOrEqual(t, s.ProbUndervalued, 0.0)
	assert.LessOrEqual(t, s.ProbUndervalued, 1.0)
}

func TestSummarize_ProbUndervaluedStrictlyGreater(t *testing.T) {
	// Outcomes equal to the price do not count as undervalued
	s := summaryForOutcomes(t, []float64{10, 20, 20, 30}, 20, 0)
	assert.InDelta(t, 0.25, s.ProbUndervalued, 1e-12)
}

func TestSummarize_ExpectedUpside(t *testing.T) {
	s := summaryForOutcomes(t, []float64{40, 60}, 40, 0)
	assert.InDelta(t, 0.25, s.ExpectedUpside, 1e-12) // mean 50 vs price 40
}

func TestSummarize_GuardFraction(t *testing.T) {
	s := summaryForOutcomes(t, []float64{10, 20, 30, 40}, 25, 1)
	assert.InDelta(t, 0.25, s.GuardFraction, 1e-12)
}

func TestRecommendationBands(t *testing.T) {
	tests := []struct {
		name string
		prob float64
		want Recommendation
	}{
		{name: "well above 80", prob: 0.95, want: StrongBuy},
		{name: "just above 80", prob: 0.801, want: StrongBuy},
		{name: "exactly 80 falls to BUY", prob: 0.80, want: Buy},
		{name: "between 65 and 80", prob: 0.70, want: Buy},
		{name: "exactly 65 falls to HOLD", prob: 0.65, want: Hold},
		{name: "between 50 and 65", prob: 0.55, want: Hold},
		{name: "exactly 50 falls to SELL", prob: 0.50, want: Sell},
		{name: "between 35 and 50", prob: 0.40, want: Sell},
		{name: "exactly 35 falls to STRONG SELL", prob: 0.35, want: StrongSell},
		{name: "bottom", prob: 0.0, want: StrongSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecommendationFor(tt.prob))
		})
	}
}

func TestRecommendation_MonotonicNonIncreasing(t *testing.T) {
	order := map[Recommendation]int{
		StrongBuy:  5,
		Buy:        4,
		Hold:       3,
		Sell:       2,
		StrongSell: 1,
	}

	prev := order[RecommendationFor(1.0)]
	for p := 1.0; p >= 0; p -= 0.01 {
		cur := order[RecommendationFor(p)]
		assert.LessOrEqual(t, cur, prev, "recommendation must not improve as probability falls (p=%.2f)", p)
		prev = cur
	}
}

func TestHistogram(t *testing.T) {
	outcomes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bins := Histogram(outcomes, 5)

	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
		assert.LessOrEqual(t, b.Low, b.High)
	}
	assert.Equal(t, len(outcomes), total)

	// Max value lands in the last bin, not past it
	assert.Equal(t, 10.0, bins[4].High)
	assert.GreaterOrEqual(t, bins[4].Count, 1)
}

func TestHistogram_DegenerateDistribution(t *testing.T) {
	bins := Histogram([]float64{5, 5, 5}, 10)
	require.Len(t, bins, 1)
	assert.Equal(t, 3, bins[0].Count)
}
