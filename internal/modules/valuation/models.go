package valuation

// BaselineParameters holds the per-company stochastic baseline derived
// from the historical series. Computed exactly once per company and
// shared read-only by every simulation trial.
type BaselineParameters struct {
	Symbol            string  `json:"symbol"`
	GrowthMean        float64 `json:"growth_mean"`         // historical FCF CAGR
	GrowthStdDev      float64 `json:"growth_std_dev"`      // volatility of period growth
	DiscountRate      float64 `json:"discount_rate"`       // baseline WACC
	TaxRate           float64 `json:"tax_rate"`            // effective tax rate
	FreeCashFlow      float64 `json:"free_cash_flow"`      // latest period FCF
	NetDebt           float64 `json:"net_debt"`            // total debt - cash
	SharesOutstanding float64 `json:"shares_outstanding"`
	CurrentPrice      float64 `json:"current_price"`

	// WACC decomposition, kept for reporting
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"`
	Beta         float64 `json:"beta"`

	// LowConfidence is set when a fallback replaced a value that could
	// not be derived from the data (tax denominator zero, too few
	// growth observations). The run proceeds; callers surface the flag.
	LowConfidence        bool     `json:"low_confidence"`
	LowConfidenceReasons []string `json:"low_confidence_reasons,omitempty"`
}

// Bounds is a closed interval used to cap sampled parameters
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp caps v to the interval
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// SimulationConfig holds caller-supplied run settings. Never mutated
// during a run.
type SimulationConfig struct {
	Trials       int `json:"trials"`
	HorizonYears int `json:"horizon_years"`

	GrowthBounds   Bounds `json:"growth_bounds"`
	DiscountBounds Bounds `json:"discount_bounds"`
	TerminalBounds Bounds `json:"terminal_bounds"`

	DiscountStdDev     float64 `json:"discount_std_dev"`
	TerminalGrowthMean float64 `json:"terminal_growth_mean"`
	TerminalGrowthStd  float64 `json:"terminal_growth_std"`

	// Seed makes the run reproducible: same baseline, config and seed
	// produce a bit-for-bit identical outcome sequence. Nil seeds from
	// the wall clock.
	Seed *uint64 `json:"seed,omitempty"`

	// Workers caps the simulation worker pool. Zero means one worker
	// per CPU. Determinism does not depend on the worker count.
	Workers int `json:"workers,omitempty"`
}

// DefaultConfig returns the standard simulation settings
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Trials:             10000,
		HorizonYears:       5,
		GrowthBounds:       Bounds{Min: 0.01, Max: 0.30},
		DiscountBounds:     Bounds{Min: 0.05, Max: 0.20},
		TerminalBounds:     Bounds{Min: 0.01, Max: 0.05},
		DiscountStdDev:     0.015,
		TerminalGrowthMean: 0.03,
		TerminalGrowthStd:  0.005,
	}
}

// Validate checks run settings before any trial executes
func (c SimulationConfig) Validate() error {
	if c.Trials <= 0 {
		return ErrInvalidConfig
	}
	if c.HorizonYears <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Draw is one trial's sampled parameter triple. Ephemeral: it exists
// only within the trial that drew it.
type Draw struct {
	Growth         float64
	DiscountRate   float64
	TerminalGrowth float64

	// Guarded is true when the terminal-value guard had to intervene
	// (discount rate <= terminal growth after clamping).
	Guarded bool
}

// Recommendation is the discrete investment signal
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG SELL"
)

// DistributionSummary is the immutable statistical reduction of one
// completed run.
type DistributionSummary struct {
	Symbol       string  `json:"symbol"`
	RunID        string  `json:"run_id"`
	Trials       int     `json:"trials"`
	CurrentPrice float64 `json:"current_price"`

	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`

	// ProbUndervalued is the fraction of outcomes strictly greater
	// than the current price, in [0, 1].
	ProbUndervalued float64 `json:"prob_undervalued"`
	ExpectedUpside  float64 `json:"expected_upside"`
	MedianUpside    float64 `json:"median_upside"`

	Recommendation Recommendation `json:"recommendation"`

	// GuardFraction is the share of trials where the terminal-value
	// guard intervened. Diagnostic only.
	GuardFraction float64 `json:"guard_fraction"`

	LowConfidence bool `json:"low_confidence"`
}

// Overrides carries externally supplied replacements for estimated
// baseline parameters. Nil fields keep the estimated value.
type Overrides struct {
	GrowthMean     *float64 `json:"growth_mean,omitempty"`
	DiscountRate   *float64 `json:"discount_rate,omitempty"`
	TerminalGrowth *float64 `json:"terminal_growth,omitempty"`
	TaxRate        *float64 `json:"tax_rate,omitempty"`
	HorizonYears   *int     `json:"horizon_years,omitempty"`
}

// Apply returns copies of baseline and config with the overrides
// substituted. Applied once, before sampling begins.
func (o Overrides) Apply(baseline BaselineParameters, cfg SimulationConfig) (BaselineParameters, SimulationConfig) {
	if o.GrowthMean != nil {
		baseline.GrowthMean = *o.GrowthMean
	}
	if o.DiscountRate != nil {
		baseline.DiscountRate = *o.DiscountRate
	}
	if o.TaxRate != nil {
		baseline.TaxRate = *o.TaxRate
	}
	if o.TerminalGrowth != nil {
		cfg.TerminalGrowthMean = *o.TerminalGrowth
	}
	if o.HorizonYears != nil {
		cfg.HorizonYears = *o.HorizonYears
	}
	return baseline, cfg
}
