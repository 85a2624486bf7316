package valuation

import (
	"fmt"
	"math"
)

// DiscountToFairValue discounts a projected path and terminal value to
// present, converts enterprise value to equity value by subtracting net
// debt, and divides by shares outstanding.
func DiscountToFairValue(path []float64, terminalValue, discountRate, netDebt, shares float64) (float64, error) {
	if shares <= 0 {
		return 0, fmt.Errorf("%w: got %.2f", ErrInvalidShareCount, shares)
	}

	presentValue := 0.0
	for t, fcf := range path {
		presentValue += fcf / math.Pow(1+discountRate, float64(t+1))
	}
	presentValue += terminalValue / math.Pow(1+discountRate, float64(len(path)))

	equityValue := presentValue - netDebt
	return equityValue / shares, nil
}
