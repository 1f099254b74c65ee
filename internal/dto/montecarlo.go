package dto

type MonteCarloRequest struct {
	Tickers     []string `json:"tickers" validate:"required,min=1,dive,required"`
	Strategy    string   `json:"strategy" validate:"required"`
	Simulations int      `json:"simulations" validate:"gte=0"`
	Horizon     int      `json:"horizon" validate:"gte=0"`
	Seed        *int64   `json:"seed" validate:"omitempty,gte=0"`
	StopLossPct *float64 `json:"stop_loss_pct" validate:"omitempty,gt=0,lt=100"`
}

type AssetMonteCarloResult struct {
	Ticker        string      `json:"ticker"`
	StrategyName  string      `json:"strategy_name"`
	NSimulations  int         `json:"n_simulations"`
	Horizon       int         `json:"horizon"`
	Seed          int64       `json:"seed"`
	ReturnMedian  float64     `json:"return_median"`
	ReturnMean    float64     `json:"return_mean"`
	ReturnP10     float64     `json:"return_p10"`
	ReturnP90     float64     `json:"return_p90"`
	ReturnP05     float64     `json:"return_p05"`
	ProbLoss      float64     `json:"prob_loss"`
	MaxDDMedian   float64     `json:"max_dd_median"`
	MaxDDP95      float64     `json:"max_dd_p95"`
	SharpeMedian  float64     `json:"sharpe_median"`
	WinRateMedian float64     `json:"win_rate_median"`
	VaR95         float64     `json:"var_95"`
	CVaR95        float64     `json:"cvar_95"`
	Profile       RiskProfile `json:"profile"`
}

// MonteCarloReport groups per-instrument results of one basket run.
type MonteCarloReport struct {
	RunID        string                  `json:"run_id,omitempty"`
	StrategyName string                  `json:"strategy_name"`
	Seed         int64                   `json:"seed"`
	Simulations  int                     `json:"simulations"`
	Horizon      int                     `json:"horizon"`
	Results      []AssetMonteCarloResult `json:"results"`
	Failures     []AssetFailure          `json:"failures,omitempty"`
}
