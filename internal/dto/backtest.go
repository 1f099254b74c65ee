package dto

import "time"

// BacktestRequest mendefinisikan parameter untuk menjalankan sebuah backtest.
type BacktestRequest struct {
	Tickers        []string `json:"tickers" validate:"required,min=1,dive,required"`
	Strategy       string   `json:"strategy" validate:"required"`
	Period         string   `json:"period"`
	InitialCapital float64  `json:"initial_capital" validate:"gte=0"`
	StopLossPct    *float64 `json:"stop_loss_pct" validate:"omitempty,gt=0,lt=100"`
}

// TradeRecord mencatat setiap transaksi yang terjadi selama backtest.
type TradeRecord struct {
	EntryTime  time.Time  `json:"entry_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Quantity   float64    `json:"quantity"`
	ProfitLoss *float64   `json:"profit_loss,omitempty"`
	ExitReason string     `json:"exit_reason,omitempty"`
}

func (t TradeRecord) IsClosed() bool {
	return t.ExitTime != nil && t.ProfitLoss != nil
}

type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// BacktestResult merangkum hasil dari sebuah sesi backtest satu instrumen.
type BacktestResult struct {
	Ticker              string    `json:"ticker"`
	Period              string    `json:"period"`
	StrategyName        string    `json:"strategy_name"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	InitialCapital      float64   `json:"initial_capital"`
	FinalEquity         float64   `json:"final_equity"`
	TotalReturnPct      float64   `json:"total_return_pct"`
	AnnualizedReturnPct float64   `json:"annualized_return_pct"`
	SharpeRatio         float64   `json:"sharpe_ratio"`
	MaxDrawdownPct      float64   `json:"max_drawdown_pct"`
	NTrades             int       `json:"n_trades"`
	WinningTrades       int       `json:"winning_trades"`
	WinRatePct          float64   `json:"win_rate_pct"`
	BenchmarkReturnPct  float64   `json:"benchmark_return_pct"`
}

// Alpha is the excess return over buy-and-hold.
func (r BacktestResult) Alpha() float64 {
	return r.TotalReturnPct - r.BenchmarkReturnPct
}

// AssetFailure reports an instrument excluded from a multi-instrument run.
type AssetFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// PortfolioBacktestResult aggregates equally-capitalized per-instrument runs.
type PortfolioBacktestResult struct {
	RunID               string                    `json:"run_id,omitempty"`
	Period              string                    `json:"period"`
	StrategyName        string                    `json:"strategy_name"`
	Capital             float64                   `json:"capital"`
	CapitalPerAsset     float64                   `json:"capital_per_asset"`
	TotalReturnPct      float64                   `json:"total_return_pct"`
	AnnualizedReturnPct float64                   `json:"annualized_return_pct"`
	SharpeRatio         float64                   `json:"sharpe_ratio"`
	MaxDrawdownPct      float64                   `json:"max_drawdown_pct"`
	NTrades             int                       `json:"n_trades"`
	WinRatePct          float64                   `json:"win_rate_pct"`
	BenchmarkReturnPct  float64                   `json:"benchmark_return_pct"`
	Tickers             []string                  `json:"tickers"`
	Assets              map[string]BacktestResult `json:"assets"`
	Failures            []AssetFailure            `json:"failures,omitempty"`
}
