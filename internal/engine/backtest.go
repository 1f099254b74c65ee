package engine

import (
	"context"
	"fmt"

	"golang-papertrade/internal/contract"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/logger"
)

// BacktestConfig holds the per-run settings of a historical backtest.
type BacktestConfig struct {
	StrategyName   string
	Period         string
	InitialCapital float64
	StopLossPct    *float64
}

// Run is the full outcome of one instrument backtest.
type Run struct {
	Result      dto.BacktestResult
	Trades      []dto.TradeRecord
	Equity      []dto.EquityPoint
	Diagnostics []dto.Diagnostic
}

// Backtester wires evaluation, simulation and statistics for a single instrument.
type Backtester struct {
	log       *logger.Logger
	evaluator *Evaluator
}

func NewBacktester(log *logger.Logger, window int) (*Backtester, error) {
	if log == nil {
		log = logger.NewNop()
	}
	evaluator, err := NewEvaluator(log, window)
	if err != nil {
		return nil, err
	}
	return &Backtester{log: log, evaluator: evaluator}, nil
}

func (b *Backtester) Window() int {
	return b.evaluator.Window()
}

// Run replays strat over series and simulates the resulting trades.
func (b *Backtester) Run(ctx context.Context, series dto.PriceSeries, strat contract.Strategy, cfg BacktestConfig) (*Run, error) {
	if series.Len() == 0 {
		return nil, &DataUnavailableError{Ticker: series.Ticker}
	}
	if err := series.Validate(); err != nil {
		return nil, &DataUnavailableError{Ticker: series.Ticker, Err: err}
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapital, cfg.InitialCapital)
	}

	signals, err := b.evaluator.Evaluate(ctx, series, strat)
	if err != nil {
		return nil, err
	}

	entries := signals.Entries
	if !signals.HasEntries() {
		entries = AlwaysInvested(signals.Entries, signals.Exits, b.evaluator.Window())
	}

	closes := series.Closes()
	sim, err := Simulate(SimulationInput{
		Timestamps:  series.Timestamps(),
		Closes:      closes,
		Entries:     entries,
		Exits:       signals.Exits,
		InitialCash: cfg.InitialCapital,
		StopLossPct: cfg.StopLossPct,
	})
	if err != nil {
		return nil, err
	}

	stats := ComputeStatistics(sim, closes)

	b.log.DebugContext(ctx, "Backtest run finished",
		logger.StringField("ticker", series.Ticker),
		logger.StringField("strategy", cfg.StrategyName),
		logger.IntField("bars", series.Len()),
		logger.IntField("trades", stats.NTrades),
		logger.Float64Field("total_return_pct", stats.TotalReturnPct),
	)

	return &Run{
		Result: dto.BacktestResult{
			Ticker:              series.Ticker,
			Period:              cfg.Period,
			StrategyName:        cfg.StrategyName,
			StartDate:           series.First().Timestamp,
			EndDate:             series.Last().Timestamp,
			InitialCapital:      cfg.InitialCapital,
			FinalEquity:         stats.FinalEquity,
			TotalReturnPct:      stats.TotalReturnPct,
			AnnualizedReturnPct: stats.AnnualizedReturnPct,
			SharpeRatio:         stats.SharpeRatio,
			MaxDrawdownPct:      stats.MaxDrawdownPct,
			NTrades:             stats.NTrades,
			WinningTrades:       stats.WinningTrades,
			WinRatePct:          stats.WinRatePct,
			BenchmarkReturnPct:  stats.BenchmarkReturnPct,
		},
		Trades:      sim.Trades,
		Equity:      sim.Equity,
		Diagnostics: signals.Diagnostics,
	}, nil
}
