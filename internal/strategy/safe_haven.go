package strategy

import (
	"fmt"
	"strings"

	"golang-papertrade/internal/dto"
)

// SafeHavenStrategy sells risky instruments once they draw down from the window
// peak by more than a threshold. Safe-haven tickers are never sold.
type SafeHavenStrategy struct {
	drawdown    float64
	safeTickers map[string]struct{}
}

func NewSafeHavenStrategy(drawdownPct float64, safeTickers []string) *SafeHavenStrategy {
	safe := make(map[string]struct{}, len(safeTickers))
	for _, t := range safeTickers {
		safe[strings.ToUpper(t)] = struct{}{}
	}
	return &SafeHavenStrategy{drawdown: drawdownPct / 100, safeTickers: safe}
}

func (s *SafeHavenStrategy) GetName() StrategyName {
	return StrategySafeHaven
}

func (s *SafeHavenStrategy) IsSafeHaven(ticker string) bool {
	_, ok := s.safeTickers[strings.ToUpper(ticker)]
	return ok
}

func (s *SafeHavenStrategy) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, _ *float64) (*dto.Signal, error) {
	if s.IsSafeHaven(ticker) || len(window) < 2 {
		return nil, nil
	}

	peak := window[0].Close
	for _, p := range window[1:] {
		if p.Close > peak {
			peak = p.Close
		}
	}
	if peak == 0 {
		return nil, nil
	}

	drawdown := (peak - currentPrice) / peak
	if drawdown >= s.drawdown {
		return sell(ticker, currentPrice, 0.8, fmt.Sprintf("Drawdown %.1f%% from peak, rotating to safe haven", drawdown*100)), nil
	}
	return nil, nil
}
