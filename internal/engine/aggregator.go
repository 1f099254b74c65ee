package engine

import (
	"gonum.org/v1/gonum/stat"

	"golang-papertrade/internal/dto"
)

// Aggregate combines equally-capitalized per-instrument results into basket-level
// metrics. Returns, Sharpe and benchmark are averaged, drawdown takes the worst
// constituent and trade counts are summed.
func Aggregate(results []dto.BacktestResult) (*dto.PortfolioBacktestResult, error) {
	if len(results) == 0 {
		return nil, ErrDegenerateInput
	}

	n := len(results)
	totals := make([]float64, n)
	annualized := make([]float64, n)
	sharpes := make([]float64, n)
	benchmarks := make([]float64, n)

	portfolio := &dto.PortfolioBacktestResult{
		Period:       results[0].Period,
		StrategyName: results[0].StrategyName,
		Tickers:      make([]string, 0, n),
		Assets:       make(map[string]dto.BacktestResult, n),
	}

	var winners int
	for i, r := range results {
		totals[i] = r.TotalReturnPct
		annualized[i] = r.AnnualizedReturnPct
		sharpes[i] = r.SharpeRatio
		benchmarks[i] = r.BenchmarkReturnPct

		if r.MaxDrawdownPct > portfolio.MaxDrawdownPct {
			portfolio.MaxDrawdownPct = r.MaxDrawdownPct
		}
		portfolio.NTrades += r.NTrades
		winners += r.WinningTrades
		portfolio.Capital += r.InitialCapital

		portfolio.Tickers = append(portfolio.Tickers, r.Ticker)
		portfolio.Assets[r.Ticker] = r
	}

	portfolio.CapitalPerAsset = portfolio.Capital / float64(n)
	portfolio.TotalReturnPct = finiteOr(stat.Mean(totals, nil), 0)
	portfolio.AnnualizedReturnPct = finiteOr(stat.Mean(annualized, nil), 0)
	portfolio.SharpeRatio = finiteOr(stat.Mean(sharpes, nil), 0)
	portfolio.BenchmarkReturnPct = finiteOr(stat.Mean(benchmarks, nil), 0)
	portfolio.WinRatePct = winRatePct(winners, portfolio.NTrades)

	return portfolio, nil
}
