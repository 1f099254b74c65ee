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

var sizeFlags struct {
	ticker   string
	stopLoss float64
	broker   string
	capital  float64
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size a new position from the risk budget and a stop loss",
	RunE:  runSize,
}

func init() {
	f := sizeCmd.Flags()
	f.StringVarP(&sizeFlags.ticker, "ticker", "t", "", "ticker to size")
	f.Float64Var(&sizeFlags.stopLoss, "stop-loss", 0, "stop price in the instrument currency, ATR based when omitted")
	f.StringVarP(&sizeFlags.broker, "broker", "b", "", "broker commission schedule")
	f.Float64Var(&sizeFlags.capital, "capital", 0, "total capital, config default when omitted")
	_ = sizeCmd.MarkFlagRequired("ticker")
}

func runSize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer appDep.Close()

	req := dto.SizingRequest{
		Ticker:  sizeFlags.ticker,
		Broker:  sizeFlags.broker,
		Capital: sizeFlags.capital,
	}
	if cmd.Flags().Changed("stop-loss") {
		req.StopLoss = utils.ToPointer(sizeFlags.stopLoss)
	}
	if err := appDep.validator.Struct(req); err != nil {
		return err
	}

	result, err := appDep.service.SizingService.Calculate(ctx, req)
	if err != nil {
		return err
	}

	console.New(cmd.OutOrStdout()).PrintSizing(result)
	return nil
}
