package valuation

import "math"

// ProjectCashFlows projects free cash flow over the horizon under one
// draw: FCF_t = base * (1+growth)^t for t = 1..horizon. The terminal
// value is a growing perpetuity on the final year:
// TV = FCF_h * (1+g_term) / (r - g_term). The sampler guarantees
// r > g_term, so the denominator is positive by construction.
func ProjectCashFlows(baseFCF float64, draw Draw, horizonYears int) (path []float64, terminalValue float64) {
	path = make([]float64, horizonYears)
	for t := 1; t <= horizonYears; t++ {
		path[t-1] = baseFCF * math.Pow(1+draw.Growth, float64(t))
	}

	terminalFCF := path[horizonYears-1] * (1 + draw.TerminalGrowth)
	terminalValue = terminalFCF / (draw.DiscountRate - draw.TerminalGrowth)

	return path, terminalValue
}
