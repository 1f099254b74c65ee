package dto

import "time"

type Signal struct {
	Action     SignalAction `json:"action"`
	Ticker     string       `json:"ticker"`
	Price      float64      `json:"price"`
	Reason     string       `json:"reason"`
	Confidence float64      `json:"confidence"`
}

func (s *Signal) IsBuy() bool {
	return s != nil && s.Action == SignalBuy
}

func (s *Signal) IsSell() bool {
	return s != nil && s.Action == SignalSell
}

// Diagnostic records a bar on which the strategy failed and was treated as no-signal.
type Diagnostic struct {
	Bar       int       `json:"bar"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
}
