package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync SYMBOL...",
	Short: "Fetch and store statement history for symbols",
	Long: `Pulls annual financial statements from Yahoo Finance and stores them
locally so later analyses do not refetch them.

Example:
  intrinsic sync AAPL MSFT`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var failed int
	for _, arg := range args {
		symbol := strings.ToUpper(arg)
		history, err := a.analysis.Sync(symbol)
		if err != nil {
			fmt.Printf("%-8s sync failed: %v\n", symbol, err)
			failed++
			continue
		}
		fmt.Printf("%-8s %d periods stored\n", symbol, len(history))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed", failed, len(args))
	}
	return nil
}
