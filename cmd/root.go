package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "Paper-trading strategy backtests, Monte Carlo risk analysis and position sizing",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(monteCarloCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(strategiesCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
