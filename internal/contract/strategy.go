package contract

import "golang-papertrade/internal/dto"

// Strategy decides whether to buy or sell given the bars preceding the current one.
//
// window holds only bars strictly before the bar being evaluated and must be
// treated as read-only. currentPrice is the close of the evaluated bar.
// avgEntryPrice is the average cost of an open position, nil when unknown.
// A nil signal means hold. Implementations must be deterministic for identical
// inputs and safe for concurrent use.
type Strategy interface {
	Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, avgEntryPrice *float64) (*dto.Signal, error)
}

