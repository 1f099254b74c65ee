package dto

import (
	"fmt"
	"time"
)

type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// PriceSeries is the time-ordered bar history of one instrument.
type PriceSeries struct {
	Ticker   string       `json:"ticker"`
	Currency string       `json:"currency,omitempty"`
	Points   []PricePoint `json:"points"`
}

func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns a freshly allocated slice of close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Timestamps returns a freshly allocated slice of bar timestamps.
func (s PriceSeries) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		ts[i] = p.Timestamp
	}
	return ts
}

// Tail returns a copy of the last n bars (or all of them when n exceeds the length).
func (s PriceSeries) Tail(n int) []PricePoint {
	if n > len(s.Points) {
		n = len(s.Points)
	}
	if n <= 0 {
		return nil
	}
	out := make([]PricePoint, n)
	copy(out, s.Points[len(s.Points)-n:])
	return out
}

func (s PriceSeries) First() PricePoint {
	return s.Points[0]
}

func (s PriceSeries) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// Validate checks that timestamps are strictly increasing and prices are usable.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Close <= 0 {
			return fmt.Errorf("%s: non-positive close %v at bar %d", s.Ticker, p.Close, i)
		}
		if i > 0 && !p.Timestamp.After(s.Points[i-1].Timestamp) {
			return fmt.Errorf("%s: timestamps not strictly increasing at bar %d", s.Ticker, i)
		}
	}
	return nil
}

// MonteCarloPath is a synthetic close-only series anchored to the last real bar.
type MonteCarloPath struct {
	PriceSeries
	Index int `json:"index"`
}
