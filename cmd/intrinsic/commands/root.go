package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intrinsic",
	Short: "Monte Carlo intrinsic value estimation",
	Long: `Intrinsic estimates what a company is worth by running thousands
of discounted cash flow scenarios over sampled growth, discount and
terminal assumptions, and reports the resulting fair value
distribution against the market price.

Examples:
  intrinsic analyze AAPL
  intrinsic analyze AAPL --trials 50000 --seed 42
  intrinsic compare AAPL MSFT GOOG
  intrinsic sync AAPL
  intrinsic serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
