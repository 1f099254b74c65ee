package strategy

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"golang-papertrade/internal/dto"
)

// minBandWidth below which the bands are treated as collapsed.
const minBandWidth = 1e-12

// BollingerStrategy buys at or below the lower band and sells at or above the
// upper band. A window without variance yields no signal.
type BollingerStrategy struct {
	period int
	stdDev float64
}

func NewBollingerStrategy(period int, stdDev float64) (*BollingerStrategy, error) {
	if period < 2 || stdDev <= 0 {
		return nil, fmt.Errorf("invalid bollinger parameters: period %d, std_dev %v", period, stdDev)
	}
	return &BollingerStrategy{period: period, stdDev: stdDev}, nil
}

func (s *BollingerStrategy) GetName() StrategyName {
	return StrategyBollinger
}

func (s *BollingerStrategy) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, _ *float64) (*dto.Signal, error) {
	if len(window) < s.period {
		return nil, nil
	}

	upperBand, _, lowerBand := talib.BBands(closes(window), s.period, s.stdDev, s.stdDev, talib.SMA)
	upper, lower := upperBand[len(upperBand)-1], lowerBand[len(lowerBand)-1]
	if math.IsNaN(upper) || math.IsNaN(lower) || upper-lower <= minBandWidth {
		return nil, nil
	}

	switch {
	case currentPrice <= lower:
		return buy(ticker, currentPrice, 0.65, fmt.Sprintf("Price at/below lower Bollinger band (%.2f)", lower)), nil
	case currentPrice >= upper:
		return sell(ticker, currentPrice, 0.65, fmt.Sprintf("Price at/above upper Bollinger band (%.2f)", upper)), nil
	}
	return nil, nil
}
