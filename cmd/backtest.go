package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"golang-papertrade/internal/delivery/console"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/utils"
)

var backtestFlags struct {
	tickers  []string
	strategy string
	period   string
	capital  float64
	stopLoss float64
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a strategy on a basket of tickers",
	RunE:  runBacktest,
}

func init() {
	f := backtestCmd.Flags()
	f.StringSliceVarP(&backtestFlags.tickers, "tickers", "t", nil, "comma separated tickers")
	f.StringVarP(&backtestFlags.strategy, "strategy", "s", "", "strategy name")
	f.StringVarP(&backtestFlags.period, "period", "p", "", "history period (1mo, 3mo, 6mo, 1y, 2y, 5y)")
	f.Float64Var(&backtestFlags.capital, "capital", 0, "initial capital split equally across tickers")
	f.Float64Var(&backtestFlags.stopLoss, "stop-loss", 0, "stop-loss percent below entry, 0 disables it")
	_ = backtestCmd.MarkFlagRequired("tickers")
	_ = backtestCmd.MarkFlagRequired("strategy")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer appDep.Close()

	req := dto.BacktestRequest{
		Tickers:        backtestFlags.tickers,
		Strategy:       backtestFlags.strategy,
		Period:         backtestFlags.period,
		InitialCapital: backtestFlags.capital,
	}
	if cmd.Flags().Changed("stop-loss") && backtestFlags.stopLoss > 0 {
		req.StopLossPct = utils.ToPointer(backtestFlags.stopLoss)
	}
	if err := appDep.validator.Struct(req); err != nil {
		return err
	}

	result, err := appDep.service.BacktestService.RunBacktest(ctx, req)
	if err != nil {
		return err
	}

	console.New(cmd.OutOrStdout()).PrintPortfolio(result)
	return nil
}
