package valuation

import "math"

// Scenario is one deterministic sensitivity case
type Scenario struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	GrowthRate     float64   `json:"growth_rate"`
	TerminalGrowth float64   `json:"terminal_growth"`
	Result         DCFResult `json:"result"`
}

// SensitivityResult holds the bear/base/bull sweep and the resulting
// decision label.
type SensitivityResult struct {
	Symbol    string     `json:"symbol"`
	Scenarios []Scenario `json:"scenarios"`
	Decision  string     `json:"decision"`
}

// RunSensitivity values the company under Bear, Base and Bull growth
// assumptions scaled off historical growth (50%, 80%, 120%) with
// terminal growth at 2%, 3% and 4%.
func RunSensitivity(baseline BaselineParameters, horizonYears int) (SensitivityResult, error) {
	scenarios := []Scenario{
		{
			Name:           "Bear",
			Description:    "Conservative (50% historical growth)",
			GrowthRate:     math.Max(0.02, baseline.GrowthMean*0.5),
			TerminalGrowth: 0.02,
		},
		{
			Name:           "Base",
			Description:    "Realistic (80% historical growth)",
			GrowthRate:     math.Max(0.03, baseline.GrowthMean*0.8),
			TerminalGrowth: 0.03,
		},
		{
			Name:           "Bull",
			Description:    "Optimistic (120% historical growth)",
			GrowthRate:     math.Max(0.05, baseline.GrowthMean*1.2),
			TerminalGrowth: 0.04,
		},
	}

	result := SensitivityResult{Symbol: baseline.Symbol}
	for _, sc := range scenarios {
		dcf, err := SinglePointDCF(baseline, sc.GrowthRate, sc.TerminalGrowth, horizonYears)
		if err != nil {
			return SensitivityResult{}, err
		}
		sc.Result = dcf
		result.Scenarios = append(result.Scenarios, sc)
	}

	result.Decision = scenarioDecision(result.Scenarios)
	return result, nil
}

// scenarioDecision labels the sweep: attractive across scenarios beats
// attractive only in the bull case.
func scenarioDecision(scenarios []Scenario) string {
	byName := make(map[string]Scenario, len(scenarios))
	for _, sc := range scenarios {
		byName[sc.Name] = sc
	}

	switch {
	case byName["Bear"].Result.UpsidePct > 10:
		return "STRONG BUY - Positive upside even in bear case"
	case byName["Base"].Result.UpsidePct > 15:
		return "BUY - Good upside in base case"
	case byName["Bull"].Result.UpsidePct > 10:
		return "HOLD - Only attractive in bull case"
	default:
		return "AVOID - Limited upside across scenarios"
	}
}
