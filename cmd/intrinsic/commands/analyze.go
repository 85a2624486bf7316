package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/intrinsic/internal/modules/valuation"
)

var (
	// Simulation flags shared by analyze and compare
	flagTrials  int
	flagHorizon int
	flagSeed    uint64

	// Override flags
	flagGrowth   float64
	flagDiscount float64
	flagTerminal float64
	flagTax      float64
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Run a full Monte Carlo valuation for one symbol",
	Long: `Fetches statement history and market data for the symbol, estimates
baseline DCF parameters, runs the Monte Carlo simulation and prints
the fair value distribution, scenario sensitivity and fundamental
ratios.

Examples:
  intrinsic analyze AAPL
  intrinsic analyze AAPL --trials 50000 --seed 42
  intrinsic analyze AAPL --growth 0.08 --discount 0.10`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	addSimFlags(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&flagGrowth, "growth", 0, "override mean FCF growth rate")
	analyzeCmd.Flags().Float64Var(&flagDiscount, "discount", 0, "override discount rate (WACC)")
	analyzeCmd.Flags().Float64Var(&flagTerminal, "terminal", 0, "override terminal growth rate")
	analyzeCmd.Flags().Float64Var(&flagTax, "tax", 0, "override effective tax rate")
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagTrials, "trials", 0, "number of simulation trials")
	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "projection horizon in years")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "random seed for a reproducible run")
}

func overridesFromFlags(cmd *cobra.Command) valuation.Overrides {
	var o valuation.Overrides
	if cmd.Flags().Changed("growth") {
		o.GrowthMean = &flagGrowth
	}
	if cmd.Flags().Changed("discount") {
		o.DiscountRate = &flagDiscount
	}
	if cmd.Flags().Changed("terminal") {
		o.TerminalGrowth = &flagTerminal
	}
	if cmd.Flags().Changed("tax") {
		o.TaxRate = &flagTax
	}
	return o
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	symbol := strings.ToUpper(args[0])

	report, err := a.analysis.Analyze(cmd.Context(), symbol, a.simConfig(cmd), overridesFromFlags(cmd))
	if err != nil {
		return err
	}

	fmt.Println(valuation.RenderReport(report.Summary, report.Baseline))

	fmt.Println("Scenario sensitivity:")
	for _, sc := range report.Sensitivity.Scenarios {
		fmt.Printf("  %-5s growth %5.1f%%  terminal %4.1f%%  fair value %10.2f  upside %+6.1f%%\n",
			sc.Name, sc.GrowthRate*100, sc.TerminalGrowth*100, sc.Result.FairValue,
			(sc.Result.FairValue/report.Summary.CurrentPrice-1)*100)
	}
	fmt.Printf("  Decision: %s\n\n", report.Sensitivity.Decision)

	if report.AltmanZ != nil {
		fmt.Printf("Altman Z-score: %.2f (%s)\n", *report.AltmanZ, report.AltmanZone)
	}
	return nil
}
