package valuation

import (
	"fmt"
	"strings"
)

// RenderReport formats a distribution summary as a fixed-width text
// report for the CLI.
func RenderReport(summary DistributionSummary, baseline BaselineParameters) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "MONTE CARLO DCF ANALYSIS: %s\n", summary.Symbol)
	fmt.Fprintf(&b, "Simulations: %d\n", summary.Trials)
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintf(&b, "Current Market Price: $%.2f\n\n", summary.CurrentPrice)

	fmt.Fprintf(&b, "Probabilistic Fair Value Estimates\n%s\n", thin)
	writeRow(&b, "Mean Fair Value", "$%10.2f", summary.Mean)
	writeRow(&b, "Median Fair Value", "$%10.2f", summary.Median)
	writeRow(&b, "Standard Deviation", "$%10.2f", summary.StdDev)

	fmt.Fprintf(&b, "\nConfidence Intervals\n%s\n", thin)
	writeRow(&b, "10th Percentile (Pessimistic)", "$%10.2f", summary.P10)
	writeRow(&b, "25th Percentile", "$%10.2f", summary.P25)
	writeRow(&b, "75th Percentile", "$%10.2f", summary.P75)
	writeRow(&b, "90th Percentile (Optimistic)", "$%10.2f", summary.P90)
	fmt.Fprintf(&b, "  80%% Confidence Range............... $%.2f - $%.2f\n", summary.P10, summary.P90)

	fmt.Fprintf(&b, "\nProbabilistic Assessment\n%s\n", thin)
	writeRow(&b, "Probability Undervalued", "%10.1f%%", summary.ProbUndervalued*100)
	writeRow(&b, "Expected Upside (Mean)", "%10.1f%%", summary.ExpectedUpside*100)
	writeRow(&b, "Expected Upside (Median)", "%10.1f%%", summary.MedianUpside*100)

	fmt.Fprintf(&b, "\nHistorical Parameters Used\n%s\n", thin)
	writeRow(&b, "Historical FCF Growth (Mean)", "%10.1f%%", baseline.GrowthMean*100)
	writeRow(&b, "Growth Volatility (Std Dev)", "%10.1f%%", baseline.GrowthStdDev*100)
	writeRow(&b, "Base WACC", "%10.1f%%", baseline.DiscountRate*100)

	if summary.LowConfidence {
		fmt.Fprintf(&b, "\nNote: low confidence estimate\n")
		for _, reason := range baseline.LowConfidenceReasons {
			fmt.Fprintf(&b, "  - %s\n", reason)
		}
	}

	fmt.Fprintf(&b, "\nRecommendation: %s\n%s\n", summary.Recommendation, rule)
	return b.String()
}

func writeRow(b *strings.Builder, label, format string, value float64) {
	padded := label + strings.Repeat(".", max(0, 35-len(label)))
	fmt.Fprintf(b, "  %s %s\n", padded, fmt.Sprintf(format, value))
}
