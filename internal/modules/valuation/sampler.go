package valuation

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// guardRetries bounds the resampling loop when a draw leaves the
	// discount rate at or below terminal growth.
	guardRetries = 10

	// guardEpsilon separates the forced terminal growth from the
	// discount rate when resampling fails to fix the pair. Small enough
	// to stay inside the terminal bounds for any in-bounds discount
	// rate.
	guardEpsilon = 0.005
)

// trialSource returns the random stream for one trial. Streams are
// derived from (seed, trial index) rather than carved from a single
// shared stream, so the mapping is stable no matter how trials are
// spread across workers.
func trialSource(seed uint64, trial int) rand.Source {
	return rand.NewPCG(seed, uint64(trial))
}

// SampleDraw draws one trial's parameter triple from independent
// bounded normal distributions over the given stream.
//
// Clamping can leave discountRate <= terminalGrowth, which would make
// the terminal-value denominator non-positive. The pair is then
// resampled from the same stream up to guardRetries times; if the
// violation persists, terminal growth is forced to
// discountRate - guardEpsilon. Everything consumes the stream in a
// fixed order, so a fixed seed still yields identical draws.
func SampleDraw(src rand.Source, baseline BaselineParameters, cfg SimulationConfig) Draw {
	growthDist := distuv.Normal{Mu: baseline.GrowthMean, Sigma: baseline.GrowthStdDev, Src: src}
	discountDist := distuv.Normal{Mu: baseline.DiscountRate, Sigma: cfg.DiscountStdDev, Src: src}
	terminalDist := distuv.Normal{Mu: cfg.TerminalGrowthMean, Sigma: cfg.TerminalGrowthStd, Src: src}

	draw := Draw{
		Growth:         cfg.GrowthBounds.Clamp(growthDist.Rand()),
		DiscountRate:   cfg.DiscountBounds.Clamp(discountDist.Rand()),
		TerminalGrowth: cfg.TerminalBounds.Clamp(terminalDist.Rand()),
	}

	for retry := 0; draw.DiscountRate <= draw.TerminalGrowth && retry < guardRetries; retry++ {
		draw.Guarded = true
		draw.DiscountRate = cfg.DiscountBounds.Clamp(discountDist.Rand())
		draw.TerminalGrowth = cfg.TerminalBounds.Clamp(terminalDist.Rand())
	}

	if draw.DiscountRate <= draw.TerminalGrowth {
		draw.Guarded = true
		draw.TerminalGrowth = draw.DiscountRate - guardEpsilon
	}

	return draw
}
