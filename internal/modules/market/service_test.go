package market

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedReturn(t *testing.T) {
	service := NewService(zerolog.Nop())

	// Doubling over 10 years: 2^(1/10) - 1
	got := service.AnnualizedReturn([]float64{100, 150, 200}, 10)
	assert.InDelta(t, math.Pow(2, 0.1)-1, got, 1e-9)
}

func TestAnnualizedReturn_Fallbacks(t *testing.T) {
	service := NewService(zerolog.Nop())

	tests := []struct {
		name   string
		closes []float64
		years  float64
	}{
		{name: "empty series", closes: nil, years: 10},
		{name: "single close", closes: []float64{100}, years: 10},
		{name: "zero years", closes: []float64{100, 200}, years: 0},
		{name: "non-positive start", closes: []float64{0, 200}, years: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, DefaultMarketReturn, service.AnnualizedReturn(tt.closes, tt.years))
		})
	}
}

func TestBeta_PerfectlyCorrelated(t *testing.T) {
	service := NewService(zerolog.Nop())

	// Stock moves exactly with the index: beta 1
	index := []float64{100, 102, 101, 105, 103, 108}
	got := service.Beta(index, index)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestBeta_DoubleAmplitude(t *testing.T) {
	service := NewService(zerolog.Nop())

	// Stock returns are exactly twice the index returns each period
	index := []float64{100, 110, 99, 108.9}
	stock := []float64{100, 120, 96, 115.2}
	got := service.Beta(stock, index)
	assert.InDelta(t, 2.0, got, 1e-6)
}

func TestBeta_Fallbacks(t *testing.T) {
	service := NewService(zerolog.Nop())

	assert.Equal(t, DefaultBeta, service.Beta([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, DefaultBeta, service.Beta([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, DefaultBeta, service.Beta([]float64{100, 100, 100, 100}, []float64{100, 100, 100, 100}))
}

func TestBuildContext(t *testing.T) {
	service := NewService(zerolog.Nop())

	rf := 0.045
	ctx := service.BuildContext("TEST", 50, &rf, nil, nil, 10)

	assert.Equal(t, "TEST", ctx.Symbol)
	assert.Equal(t, 50.0, ctx.CurrentPrice)
	assert.Equal(t, 0.045, ctx.RiskFreeRate)
	assert.Equal(t, DefaultMarketReturn, ctx.MarketReturn)
	assert.Equal(t, DefaultBeta, ctx.Beta)
}

func TestRisk(t *testing.T) {
	service := NewService(zerolog.Nop())

	assert.Nil(t, service.Risk([]float64{100, 101}, 1, 0.04))

	closes := []float64{100, 110, 99, 108.9, 95, 104.5}
	risk := service.Risk(closes, 1, 0.04)
	require.NotNil(t, risk)

	assert.Positive(t, risk.Volatility)
	require.NotNil(t, risk.MaxDrawdown)
	assert.InDelta(t, (110.0-95.0)/110.0, *risk.MaxDrawdown, 1e-9)
	assert.NotNil(t, risk.Sharpe)
}
