package engine

import (
	"time"

	"golang-papertrade/internal/dto"
)

type strategyFunc func(ticker string, window []dto.PricePoint, currentPrice float64, avgEntryPrice *float64) (*dto.Signal, error)

func (f strategyFunc) Evaluate(ticker string, window []dto.PricePoint, currentPrice float64, avgEntryPrice *float64) (*dto.Signal, error) {
	return f(ticker, window, currentPrice, avgEntryPrice)
}

var (
	holdAlways = strategyFunc(func(string, []dto.PricePoint, float64, *float64) (*dto.Signal, error) {
		return nil, nil
	})
	buyAlways = strategyFunc(func(ticker string, _ []dto.PricePoint, price float64, _ *float64) (*dto.Signal, error) {
		return &dto.Signal{Action: dto.SignalBuy, Ticker: ticker, Price: price}, nil
	})
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeSeries(ticker string, start time.Time, closes []float64) dto.PriceSeries {
	points := make([]dto.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = dto.PricePoint{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
		}
	}
	return dto.PriceSeries{Ticker: ticker, Points: points}
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func dailyTimestamps(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = testStart.AddDate(0, 0, i)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func countTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
