package dto

// Signal actions emitted by strategies.
type SignalAction string

const (
	SignalBuy  SignalAction = "BUY"
	SignalSell SignalAction = "SELL"
	SignalHold SignalAction = "HOLD"
)

const (
	Interval1Day  string = "1d"
	Interval1Week string = "1w"
)

// Periods accepted by the price data adapter.
const (
	Period1Month  = "1mo"
	Period3Months = "3mo"
	Period6Months = "6mo"
	Period1Year   = "1y"
	Period2Years  = "2y"
	Period5Years  = "5y"
)

func GetValidPeriods() []string {
	return []string{
		Period1Month,
		Period3Months,
		Period6Months,
		Period1Year,
		Period2Years,
		Period5Years,
	}
}

// RiskProfile is the qualitative label attached to a Monte Carlo result.
type RiskProfile string

const (
	ProfileFavorable   RiskProfile = "favorable"
	ProfileModerate    RiskProfile = "moderate"
	ProfileUnfavorable RiskProfile = "unfavorable"
)

// Hard bounds of a Monte Carlo run. Configured limits may only tighten them.
const (
	MonteCarloMaxSimulations = 500
	MonteCarloMaxHorizon     = 365
)

// Exit reasons recorded on closed trades.
const (
	ExitReasonSignal   = "signal"
	ExitReasonStopLoss = "stop_loss"
)
