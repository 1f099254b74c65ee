package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"golang-papertrade/internal/dto"
)

// RSIStrategy signals when RSI leaves the oversold or overbought zone, not
// while it stays inside one.
type RSIStrategy struct {
	period     int
	oversold   float64
	overbought float64
}

func NewRSIStrategy(period int, oversold, overbought float64) (*RSIStrategy, error) {
	if period < 2 {
		return nil, fmt.Errorf("invalid rsi period %d", period)
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("invalid rsi zones: oversold %v, overbought %v", oversold, overbought)
	}
	return &RSIStrategy{period: period, oversold: oversold, overbought: overbought}, nil
}

func (s *RSIStrategy) GetName() StrategyName {
	return StrategyRSI
}

func (s *RSIStrategy) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, _ *float64) (*dto.Signal, error) {
	if len(window) < s.period+2 {
		return nil, nil
	}

	rsi := talib.Rsi(closes(window), s.period)
	last, prev := rsi[len(rsi)-1], rsi[len(rsi)-2]

	switch {
	case prev <= s.oversold && s.oversold < last:
		return buy(ticker, currentPrice, 0.7, fmt.Sprintf("RSI exiting oversold zone (%.1f)", last)), nil
	case prev >= s.overbought && s.overbought > last:
		return sell(ticker, currentPrice, 0.7, fmt.Sprintf("RSI exiting overbought zone (%.1f)", last)), nil
	}
	return nil, nil
}
