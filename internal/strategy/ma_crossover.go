package strategy

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"golang-papertrade/internal/dto"
)

// MACrossoverStrategy buys when the fast SMA crosses above the slow SMA and
// sells on the opposite cross.
type MACrossoverStrategy struct {
	fast int
	slow int
}

func NewMACrossoverStrategy(fast, slow int) (*MACrossoverStrategy, error) {
	if fast < 2 || slow <= fast {
		return nil, fmt.Errorf("invalid ma_crossover periods: fast %d, slow %d", fast, slow)
	}
	return &MACrossoverStrategy{fast: fast, slow: slow}, nil
}

func (s *MACrossoverStrategy) GetName() StrategyName {
	return StrategyMACrossover
}

func (s *MACrossoverStrategy) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, _ *float64) (*dto.Signal, error) {
	if len(window) < s.slow+1 {
		return nil, nil
	}

	prices := closes(window)
	fastMA := talib.Sma(prices, s.fast)
	slowMA := talib.Sma(prices, s.slow)

	last, prev := len(prices)-1, len(prices)-2
	switch {
	case fastMA[last] > slowMA[last] && fastMA[prev] <= slowMA[prev]:
		return buy(ticker, currentPrice, 0.75, fmt.Sprintf("MA%d crossed above MA%d", s.fast, s.slow)), nil
	case fastMA[last] < slowMA[last] && fastMA[prev] >= slowMA[prev]:
		return sell(ticker, currentPrice, 0.75, fmt.Sprintf("MA%d crossed below MA%d", s.fast, s.slow)), nil
	}
	return nil, nil
}
