package engine

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateInput    = errors.New("no instruments left to simulate")
	ErrInvalidWindow      = errors.New("lookback window must be positive")
	ErrInvalidHorizon     = errors.New("horizon out of bounds")
	ErrInvalidSimulations = errors.New("simulation count out of bounds")
	ErrInvalidCapital     = errors.New("initial capital must be positive")
	ErrInvalidStopLoss    = errors.New("stop-loss percentage must be in (0, 100)")
	ErrLengthMismatch     = errors.New("price and signal sequences differ in length")
	ErrInvalidSizing      = errors.New("invalid sizing input")
)

// DataUnavailableError reports an instrument without usable price history.
type DataUnavailableError struct {
	Ticker string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no price data available for %s", e.Ticker)
	}
	return fmt.Sprintf("no price data available for %s: %v", e.Ticker, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// StrategyEvaluationError wraps a failure of the strategy on a single bar.
type StrategyEvaluationError struct {
	Bar int
	Err error
}

func (e *StrategyEvaluationError) Error() string {
	return fmt.Sprintf("strategy failed on bar %d: %v", e.Bar, e.Err)
}

func (e *StrategyEvaluationError) Unwrap() error {
	return e.Err
}
