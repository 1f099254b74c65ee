package engine

import (
	"fmt"
	"time"

	"golang-papertrade/internal/dto"
)

// SimulationInput describes one instrument and one capital pool.
type SimulationInput struct {
	Timestamps  []time.Time
	Closes      []float64
	Entries     []bool
	Exits       []bool
	InitialCash float64
	// StopLossPct is a percentage, 8 means close once price falls 8% below entry.
	StopLossPct *float64
}

// Simulation is the trade log and equity curve produced by Simulate.
type Simulation struct {
	InitialCash float64
	Trades      []dto.TradeRecord
	Equity      []dto.EquityPoint
}

// ClosedTrades returns the trades that have been exited.
func (s *Simulation) ClosedTrades() []dto.TradeRecord {
	closed := make([]dto.TradeRecord, 0, len(s.Trades))
	for _, t := range s.Trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	return closed
}

// RealizedPnL sums the profit and loss of closed trades.
func (s *Simulation) RealizedPnL() float64 {
	var total float64
	for _, t := range s.Trades {
		if t.ProfitLoss != nil {
			total += *t.ProfitLoss
		}
	}
	return total
}

// FinalEquity is the last equity value, or the initial cash for an empty run.
func (s *Simulation) FinalEquity() float64 {
	if len(s.Equity) == 0 {
		return s.InitialCash
	}
	return s.Equity[len(s.Equity)-1].Value
}

type openPosition struct {
	entryPrice float64
	quantity   float64
}

// Simulate runs an all-in, long-only, single-position simulation. A position is
// opened with all cash on an entry bar and closed in full on an exit bar or when
// the close breaches the stop-loss level. Positions still open at the last bar
// stay open.
func Simulate(in SimulationInput) (*Simulation, error) {
	n := len(in.Closes)
	if len(in.Entries) != n || len(in.Exits) != n || len(in.Timestamps) != n {
		return nil, fmt.Errorf("%w: closes=%d entries=%d exits=%d timestamps=%d",
			ErrLengthMismatch, n, len(in.Entries), len(in.Exits), len(in.Timestamps))
	}
	if in.InitialCash <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapital, in.InitialCash)
	}

	stopFraction := 0.0
	if in.StopLossPct != nil {
		if *in.StopLossPct <= 0 || *in.StopLossPct >= 100 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStopLoss, *in.StopLossPct)
		}
		stopFraction = *in.StopLossPct / 100
	}

	sim := &Simulation{
		InitialCash: in.InitialCash,
		Equity:      make([]dto.EquityPoint, n),
	}

	cash := in.InitialCash
	var pos *openPosition

	for i := 0; i < n; i++ {
		price := in.Closes[i]
		ts := in.Timestamps[i]

		if pos == nil {
			if in.Entries[i] && price > 0 {
				pos = &openPosition{entryPrice: price, quantity: cash / price}
				cash = 0
				sim.Trades = append(sim.Trades, dto.TradeRecord{
					EntryTime:  ts,
					EntryPrice: price,
					Quantity:   pos.quantity,
				})
			}
		} else if reason := exitReason(pos, price, in.Exits[i], stopFraction); reason != "" {
			cash = pos.quantity * price
			closeTrade(&sim.Trades[len(sim.Trades)-1], ts, price, reason)
			pos = nil
		}

		value := cash
		if pos != nil {
			value = pos.quantity * price
		}
		sim.Equity[i] = dto.EquityPoint{Timestamp: ts, Value: value}
	}

	return sim, nil
}

func exitReason(pos *openPosition, price float64, exit bool, stopFraction float64) string {
	if stopFraction > 0 && price <= pos.entryPrice*(1-stopFraction) {
		return dto.ExitReasonStopLoss
	}
	if exit {
		return dto.ExitReasonSignal
	}
	return ""
}

// closeTrade adalah helper untuk menutup posisi pada trade record yang terbuka.
func closeTrade(trade *dto.TradeRecord, exitTime time.Time, exitPrice float64, reason string) {
	pl := trade.Quantity * (exitPrice - trade.EntryPrice)
	trade.ExitTime = &exitTime
	trade.ExitPrice = &exitPrice
	trade.ProfitLoss = &pl
	trade.ExitReason = reason
}
