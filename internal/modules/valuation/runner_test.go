package valuation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPtr(v uint64) *uint64 { return &v }

func TestRun_OutcomeLengthEqualsTrials(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 500
	cfg.Seed = seedPtr(1)

	result, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)
	assert.Len(t, result.Outcomes, 500)
	assert.NotEmpty(t, result.RunID)
}

func TestRun_DeterministicUnderFixedSeed(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 2000
	cfg.Seed = seedPtr(12345)

	first, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	second, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	// Bit-for-bit identical, index by index
	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.Equal(t, first.GuardCount, second.GuardCount)
}

func TestRun_DeterminismIndependentOfWorkerCount(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 1000
	cfg.Seed = seedPtr(777)

	cfg.Workers = 1
	serial, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	assert.Equal(t, serial.Outcomes, parallel.Outcomes)
}

func TestRun_InvalidShareCountFailsFast(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	baseline := testBaseline()
	baseline.SharesOutstanding = 0

	_, err := runner.Run(context.Background(), baseline, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidShareCount))
}

func TestRun_InvalidConfig(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{name: "zero trials", mutate: func(c *SimulationConfig) { c.Trials = 0 }},
		{name: "zero horizon", mutate: func(c *SimulationConfig) { c.HorizonYears = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := runner.Run(context.Background(), testBaseline(), cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestRun_CancellationDiscardsPartialWork(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Trials = 100000
	cfg.Seed = seedPtr(1)

	result, err := runner.Run(ctx, testBaseline(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, result)
}

func TestRun_CollapsesToSinglePointDCF(t *testing.T) {
	// With every volatility at zero each trial must reproduce the
	// deterministic DCF exactly.
	runner := NewRunner(zerolog.Nop())

	baseline := testBaseline()
	baseline.GrowthStdDev = 0

	cfg := DefaultConfig()
	cfg.Trials = 50
	cfg.DiscountStdDev = 0
	cfg.TerminalGrowthStd = 0
	cfg.Seed = seedPtr(3)

	result, err := runner.Run(context.Background(), baseline, cfg)
	require.NoError(t, err)

	dcf, err := SinglePointDCF(baseline, baseline.GrowthMean, cfg.TerminalGrowthMean, cfg.HorizonYears)
	require.NoError(t, err)

	for _, fv := range result.Outcomes {
		assert.Equal(t, dcf.FairValue, fv)
	}
}

func TestRun_RegressionAnchor(t *testing.T) {
	// One trial at zero volatility: fair value has a closed form.
	// FCF 100, growth 10%, WACC 9%, terminal 3%, horizon 5, no debt,
	// 100 shares.
	runner := NewRunner(zerolog.Nop())

	baseline := BaselineParameters{
		Symbol:            "ANCHOR",
		GrowthMean:        0.10,
		GrowthStdDev:      0,
		DiscountRate:      0.09,
		FreeCashFlow:      100,
		NetDebt:           0,
		SharesOutstanding: 100,
		CurrentPrice:      45,
	}

	cfg := DefaultConfig()
	cfg.Trials = 1
	cfg.DiscountStdDev = 0
	cfg.TerminalGrowthStd = 0
	cfg.TerminalGrowthMean = 0.03
	cfg.Seed = seedPtr(0)

	result, err := runner.Run(context.Background(), baseline, cfg)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)

	// Independent closed-form arithmetic
	pv := 0.0
	for y := 1; y <= 5; y++ {
		pv += 100 * math.Pow(1.10, float64(y)) / math.Pow(1.09, float64(y))
	}
	terminal := 100 * math.Pow(1.10, 5) * 1.03 / (0.09 - 0.03)
	pv += terminal / math.Pow(1.09, 5)
	want := pv / 100

	assert.InDelta(t, want, result.Outcomes[0], 1e-9)
}

func TestRun_FairValueDistributionIsFinite(t *testing.T) {
	runner := NewRunner(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 5000
	cfg.Seed = seedPtr(9)

	result, err := runner.Run(context.Background(), testBaseline(), cfg)
	require.NoError(t, err)

	for _, fv := range result.Outcomes {
		require.False(t, math.IsNaN(fv) || math.IsInf(fv, 0))
	}
}
