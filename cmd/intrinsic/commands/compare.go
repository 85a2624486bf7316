package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare SYMBOL SYMBOL...",
	Short: "Rank companies by probability of undervaluation",
	Long: `Runs the same Monte Carlo valuation for each symbol and ranks the
results, most undervalued first. Symbols whose analysis fails are
reported at the end instead of aborting the run.

Examples:
  intrinsic compare AAPL MSFT GOOG
  intrinsic compare AAPL MSFT --trials 20000 --seed 7`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addSimFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	symbols := make([]string, len(args))
	for i, s := range args {
		symbols[i] = strings.ToUpper(s)
	}

	result, err := a.comparison.Compare(cmd.Context(), symbols, a.simConfig(cmd))
	if err != nil {
		return err
	}

	fmt.Printf("%-4s %-8s %10s %12s %8s %8s  %s\n",
		"#", "SYMBOL", "PRICE", "MEDIAN FV", "P(UV)", "UPSIDE", "RECOMMENDATION")
	for _, e := range result.Entries {
		flag := ""
		if e.LowConfidence {
			flag = " *"
		}
		fmt.Printf("%-4d %-8s %10.2f %12.2f %7.1f%% %+7.1f%%  %s%s\n",
			e.Rank, e.Symbol, e.CurrentPrice, e.MedianFairValue,
			e.ProbUndervalued*100, e.MedianUpside*100, e.Recommendation, flag)
	}

	if len(result.Failed) > 0 {
		fmt.Println("\nFailed:")
		for symbol, reason := range result.Failed {
			fmt.Printf("  %-8s %s\n", symbol, reason)
		}
	}
	return nil
}
