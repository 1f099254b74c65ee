package strategy

import (
	"fmt"

	"golang-papertrade/internal/dto"
)

// StopLossStrategy sells once price moves a fixed percentage away from a reference
// price: the average entry price when known, otherwise the first close of the window.
type StopLossStrategy struct {
	stopLoss   float64
	takeProfit float64
}

func NewStopLossStrategy(stopLossPct, takeProfitPct float64) *StopLossStrategy {
	return &StopLossStrategy{
		stopLoss:   stopLossPct / 100,
		takeProfit: takeProfitPct / 100,
	}
}

func (s *StopLossStrategy) GetName() StrategyName {
	return StrategyStopLoss
}

func (s *StopLossStrategy) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, avgEntryPrice *float64) (*dto.Signal, error) {
	if len(window) < 2 {
		return nil, nil
	}

	reference := window[0].Close
	if avgEntryPrice != nil && *avgEntryPrice > 0 {
		reference = *avgEntryPrice
	}
	if reference == 0 {
		return nil, nil
	}

	change := (currentPrice - reference) / reference
	switch {
	case change <= -s.stopLoss:
		return sell(ticker, currentPrice, 0.95, fmt.Sprintf("Stop-loss triggered: %.1f%% drop", change*100)), nil
	case change >= s.takeProfit:
		return sell(ticker, currentPrice, 0.9, fmt.Sprintf("Take-profit triggered: %.1f%% gain", change*100)), nil
	}
	return nil, nil
}
