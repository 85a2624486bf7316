package valuation

import "errors"

// Configuration-level errors. These abort a run before any trial
// executes and are matched with errors.Is at the API boundary.
var (
	// ErrInsufficientData is returned when the historical series cannot
	// support parameter estimation: fewer than two periods, or a
	// non-positive starting free cash flow that makes compound growth
	// undefined.
	ErrInsufficientData = errors.New("insufficient historical data for estimation")

	// ErrInvalidShareCount is returned when shares outstanding is zero
	// or negative, making per-share value undefined.
	ErrInvalidShareCount = errors.New("shares outstanding must be positive")

	// ErrInvalidConfig is returned for nonsensical simulation settings
	// (zero trials, zero horizon).
	ErrInvalidConfig = errors.New("invalid simulation config")
)
