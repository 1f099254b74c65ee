package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// Statistics are the performance metrics of one simulation. Every field is finite.
type Statistics struct {
	FinalEquity         float64
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	SharpeRatio         float64
	MaxDrawdownPct      float64
	NTrades             int
	WinningTrades       int
	WinRatePct          float64
	BenchmarkReturnPct  float64
}

// ComputeStatistics derives return, risk and quality metrics from a simulation
// and the close prices it ran on.
func ComputeStatistics(sim *Simulation, closes []float64) Statistics {
	equity := equityValues(sim)
	total := TotalReturnPct(sim.InitialCash, sim.FinalEquity())

	closed := sim.ClosedTrades()
	winners := 0
	for _, t := range closed {
		if *t.ProfitLoss > 0 {
			winners++
		}
	}

	return Statistics{
		FinalEquity:         finiteOr(sim.FinalEquity(), sim.InitialCash),
		TotalReturnPct:      finiteOr(total, 0),
		AnnualizedReturnPct: finiteOr(AnnualizedReturnPct(total, len(closes)), 0),
		SharpeRatio:         finiteOr(SharpeRatio(equity), 0),
		MaxDrawdownPct:      finiteOr(MaxDrawdownPct(equity), 0),
		NTrades:             len(closed),
		WinningTrades:       winners,
		WinRatePct:          finiteOr(winRatePct(winners, len(closed)), 0),
		BenchmarkReturnPct:  finiteOr(BenchmarkReturnPct(closes), 0),
	}
}

func equityValues(sim *Simulation) []float64 {
	values := make([]float64, len(sim.Equity))
	for i, p := range sim.Equity {
		values[i] = p.Value
	}
	return values
}

func TotalReturnPct(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial * 100
}

// AnnualizedReturnPct compounds a total return over nDays trading days to a
// yearly rate. A total wipeout or worse is clamped to exactly -100.
func AnnualizedReturnPct(totalReturnPct float64, nDays int) float64 {
	if totalReturnPct <= -100 {
		return -100
	}
	if nDays < 1 {
		return 0
	}
	return (math.Pow(1+totalReturnPct/100, float64(tradingDaysPerYear)/float64(nDays)) - 1) * 100
}

// SharpeRatio is the annualized mean over sample standard deviation of per-bar
// equity returns, with a zero risk-free rate.
func SharpeRatio(equity []float64) float64 {
	returns := barReturns(equity)
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return stat.Mean(returns, nil) / sd * math.Sqrt(tradingDaysPerYear)
}

func barReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

// MaxDrawdownPct is the largest decline from a running peak, as a positive percentage.
func MaxDrawdownPct(equity []float64) float64 {
	var peak, worst float64
	for i, v := range equity {
		if i == 0 || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > worst {
			worst = dd
		}
	}
	return worst
}

// BenchmarkReturnPct is the buy-and-hold return from the first to the last close.
func BenchmarkReturnPct(closes []float64) float64 {
	if len(closes) == 0 || closes[0] == 0 {
		return 0
	}
	return (closes[len(closes)-1] - closes[0]) / closes[0] * 100
}

func winRatePct(winners, closed int) float64 {
	if closed == 0 {
		return 0
	}
	return float64(winners) / float64(closed) * 100
}

// finiteOr replaces NaN and ±Inf with fallback. Results are rendered to users
// and must never show up as NaN or Inf.
func finiteOr(v, fallback float64) float64 {
	if !isFinite(v) {
		return fallback
	}
	return v
}
