package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/utils"
)

// Console renders run results as plain-text tables.
type Console struct {
	out io.Writer
}

func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// PrintPortfolio prints one row per instrument followed by the portfolio summary.
func (c *Console) PrintPortfolio(result *dto.PortfolioBacktestResult) {
	fmt.Fprintf(c.out, "\n  BACKTEST %s | %s | %s\n", strings.ToUpper(result.StrategyName), result.Period, result.RunID)
	fmt.Fprintf(c.out, "  Capital %s (%s per asset)\n",
		utils.FormatMoney(result.Capital), utils.FormatMoney(result.CapitalPerAsset))
	if len(result.Tickers) > 0 {
		if first, ok := result.Assets[result.Tickers[0]]; ok {
			fmt.Fprintf(c.out, "  %s to %s\n", utils.PrettyDate(first.StartDate), utils.PrettyDate(first.EndDate))
		}
	}
	fmt.Fprintln(c.out)

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Ticker", "Return", "Annual", "Sharpe", "MaxDD", "Trades", "Win", "B&H", "Alpha", "Final")
	for _, ticker := range result.Tickers {
		r, ok := result.Assets[ticker]
		if !ok {
			continue
		}
		tbl.Append(
			ticker,
			utils.FormatPercentage(r.TotalReturnPct),
			utils.FormatPercentage(r.AnnualizedReturnPct),
			fmt.Sprintf("%.2f", r.SharpeRatio),
			fmt.Sprintf("%.2f%%", r.MaxDrawdownPct),
			fmt.Sprintf("%d", r.NTrades),
			fmt.Sprintf("%.1f%%", r.WinRatePct),
			utils.FormatPercentage(r.BenchmarkReturnPct),
			utils.FormatPercentage(r.Alpha()),
			utils.FormatMoney(r.FinalEquity),
		)
	}
	tbl.Append(
		"PORTFOLIO",
		utils.FormatPercentage(result.TotalReturnPct),
		utils.FormatPercentage(result.AnnualizedReturnPct),
		fmt.Sprintf("%.2f", result.SharpeRatio),
		fmt.Sprintf("%.2f%%", result.MaxDrawdownPct),
		fmt.Sprintf("%d", result.NTrades),
		fmt.Sprintf("%.1f%%", result.WinRatePct),
		utils.FormatPercentage(result.BenchmarkReturnPct),
		utils.FormatPercentage(result.TotalReturnPct-result.BenchmarkReturnPct),
		"-",
	)
	tbl.Render()

	c.printFailures(result.Failures)
}

// PrintMonteCarlo prints the distribution summary of every analyzed instrument.
func (c *Console) PrintMonteCarlo(report *dto.MonteCarloReport) {
	fmt.Fprintf(c.out, "\n  MONTE CARLO %s | %d paths x %d days | seed %d | %s\n\n",
		strings.ToUpper(report.StrategyName), report.Simulations, report.Horizon, report.Seed, report.RunID)

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Ticker", "Median", "Mean", "P10", "P90", "P(loss)", "VaR95", "CVaR95", "DD med", "DD p95", "Sharpe", "Profile")
	for _, r := range report.Results {
		tbl.Append(
			r.Ticker,
			utils.FormatPercentage(r.ReturnMedian),
			utils.FormatPercentage(r.ReturnMean),
			utils.FormatPercentage(r.ReturnP10),
			utils.FormatPercentage(r.ReturnP90),
			fmt.Sprintf("%.0f%%", r.ProbLoss*100),
			utils.FormatPercentage(r.VaR95),
			utils.FormatPercentage(r.CVaR95),
			fmt.Sprintf("%.2f%%", r.MaxDDMedian),
			fmt.Sprintf("%.2f%%", r.MaxDDP95),
			fmt.Sprintf("%.2f", r.SharpeMedian),
			string(r.Profile),
		)
	}
	tbl.Render()

	c.printFailures(report.Failures)
}

// PrintSizing prints the sized position, its risk budget and any warnings.
func (c *Console) PrintSizing(result *dto.SizingResult) {
	fmt.Fprintf(c.out, "\n  SIZING %s | %s | capital %s\n\n", result.Ticker, result.Broker, utils.FormatMoney(result.Capital))

	stop := fmt.Sprintf("%.2f (%s)", result.StopLoss, result.StopType)
	if result.ATR != nil {
		stop = fmt.Sprintf("%.2f (%s %.2f)", result.StopLoss, result.StopType, *result.ATR)
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Field", "Value")
	tbl.Append("Price", fmt.Sprintf("%.2f %s", result.Price, result.Currency))
	tbl.Append("Stop", stop)
	tbl.Append("Distance", fmt.Sprintf("%.2f (%.2f%%)", result.Distance, result.DistancePct))
	tbl.Append("Shares", fmt.Sprintf("%d (limited by %s)", result.Shares, result.LimitedBy))
	tbl.Append("Nominal", fmt.Sprintf("%s (%.1f%% of capital)", utils.FormatMoney(result.Nominal), result.PortfolioPct))
	tbl.Append("Commissions", fmt.Sprintf("%s buy / %s sell", utils.FormatMoney(result.BuyCommission), utils.FormatMoney(result.SellCommission)))
	tbl.Append("Risk", fmt.Sprintf("%s of %s", utils.FormatMoney(result.ActualRisk), utils.FormatMoney(result.MaxRisk)))
	tbl.Render()

	for _, w := range result.Warnings {
		fmt.Fprintf(c.out, "  !! %s\n", w)
	}
}

func (c *Console) PrintStrategies(names []string) {
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Strategy")
	for _, name := range names {
		tbl.Append(name)
	}
	tbl.Render()
}

func (c *Console) printFailures(failures []dto.AssetFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n  Skipped:\n")
	for _, f := range failures {
		fmt.Fprintf(c.out, "  >> %s: %s\n", f.Ticker, f.Reason)
	}
}
