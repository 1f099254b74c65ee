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

var monteCarloFlags struct {
	tickers     []string
	strategy    string
	simulations int
	horizon     int
	seed        int64
	stopLoss    float64
}

var monteCarloCmd = &cobra.Command{
	Use:     "montecarlo",
	Aliases: []string{"mc"},
	Short:   "Estimate the forward risk of a strategy on bootstrapped price paths",
	RunE:    runMonteCarlo,
}

func init() {
	f := monteCarloCmd.Flags()
	f.StringSliceVarP(&monteCarloFlags.tickers, "tickers", "t", nil, "comma separated tickers")
	f.StringVarP(&monteCarloFlags.strategy, "strategy", "s", "", "strategy name")
	f.IntVarP(&monteCarloFlags.simulations, "simulations", "n", 0, "number of simulated paths")
	f.IntVar(&monteCarloFlags.horizon, "horizon", 0, "business days per path")
	f.Int64Var(&monteCarloFlags.seed, "seed", 0, "random seed, drawn at random when omitted")
	f.Float64Var(&monteCarloFlags.stopLoss, "stop-loss", 0, "stop-loss percent below entry, 0 disables it")
	_ = monteCarloCmd.MarkFlagRequired("tickers")
	_ = monteCarloCmd.MarkFlagRequired("strategy")
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer appDep.Close()

	req := dto.MonteCarloRequest{
		Tickers:     monteCarloFlags.tickers,
		Strategy:    monteCarloFlags.strategy,
		Simulations: monteCarloFlags.simulations,
		Horizon:     monteCarloFlags.horizon,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = utils.ToPointer(monteCarloFlags.seed)
	}
	if cmd.Flags().Changed("stop-loss") && monteCarloFlags.stopLoss > 0 {
		req.StopLossPct = utils.ToPointer(monteCarloFlags.stopLoss)
	}
	if err := appDep.validator.Struct(req); err != nil {
		return err
	}

	report, err := appDep.service.MonteCarloService.Run(ctx, req)
	if err != nil {
		return err
	}

	console.New(cmd.OutOrStdout()).PrintMonteCarlo(report)
	return nil
}
