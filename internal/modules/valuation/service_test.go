package valuation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Analyze(t *testing.T) {
	service := NewService(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 1000
	cfg.Seed = seedPtr(42)

	result, err := service.Analyze(context.Background(), testSnapshots(100, 110, 121), testMarket(), cfg, Overrides{})
	require.NoError(t, err)

	assert.Len(t, result.Outcomes, 1000)
	assert.Equal(t, 1000, result.Summary.Trials)
	assert.Equal(t, "TEST", result.Summary.Symbol)
	assert.NotZero(t, result.DCF.FairValue)
	assert.Equal(t, result.Run.RunID, result.Summary.RunID)
}

func TestService_Analyze_ConfigurationErrorRunsNoTrials(t *testing.T) {
	service := NewService(zerolog.Nop())

	result, err := service.Analyze(context.Background(), testSnapshots(100), testMarket(), DefaultConfig(), Overrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Nil(t, result)
}

func TestService_Analyze_OverridesReplaceEstimates(t *testing.T) {
	service := NewService(zerolog.Nop())

	cfg := DefaultConfig()
	cfg.Trials = 10
	cfg.Seed = seedPtr(1)

	growth := 0.07
	wacc := 0.11
	horizon := 7
	overrides := Overrides{
		GrowthMean:   &growth,
		DiscountRate: &wacc,
		HorizonYears: &horizon,
	}

	result, err := service.Analyze(context.Background(), testSnapshots(100, 110, 121), testMarket(), cfg, overrides)
	require.NoError(t, err)

	assert.Equal(t, 0.07, result.Baseline.GrowthMean)
	assert.Equal(t, 0.11, result.Baseline.DiscountRate)
	assert.Equal(t, 7, result.Run.Config.HorizonYears)
}

func TestOverrides_NilFieldsKeepEstimates(t *testing.T) {
	baseline := testBaseline()
	cfg := DefaultConfig()

	gotBaseline, gotCfg := Overrides{}.Apply(baseline, cfg)
	assert.Equal(t, baseline, gotBaseline)
	assert.Equal(t, cfg, gotCfg)
}
