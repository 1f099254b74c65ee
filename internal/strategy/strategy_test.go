package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
)

func window(closes ...float64) []dto.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]dto.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = dto.PricePoint{Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return points
}

func trend(from, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func actionOf(s *dto.Signal) dto.SignalAction {
	if s == nil {
		return dto.SignalHold
	}
	return s.Action
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistryFromConfig(config.Default().Strategies)
	require.NoError(t, err)

	assert.Equal(t, []string{"bollinger", "ma_crossover", "rsi", "safe_haven", "stop_loss"}, r.List())

	s, err := r.Get("rsi")
	require.NoError(t, err)
	assert.Equal(t, StrategyRSI, s.GetName())

	_, err = r.Get("martingale")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestNewRegistryFromConfig_InvalidParameters(t *testing.T) {
	cfg := config.Default().Strategies
	cfg.MACrossover.FastPeriod = 50
	cfg.MACrossover.SlowPeriod = 20

	_, err := NewRegistryFromConfig(cfg)
	assert.Error(t, err)
}

func TestMACrossoverStrategy(t *testing.T) {
	s, err := NewMACrossoverStrategy(2, 3)
	require.NoError(t, err)

	tests := []struct {
		name   string
		closes []float64
		want   dto.SignalAction
	}{
		{name: "golden cross", closes: []float64{10, 10, 10, 13}, want: dto.SignalBuy},
		{name: "death cross", closes: []float64{10, 10, 10, 7}, want: dto.SignalSell},
		{name: "flat", closes: []float64{10, 10, 10, 10}, want: dto.SignalHold},
		{name: "too short", closes: []float64{10, 10, 13}, want: dto.SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := s.Evaluate("AAA", window(tt.closes...), tt.closes[len(tt.closes)-1], nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, actionOf(sig))
		})
	}

	_, err = NewMACrossoverStrategy(5, 5)
	assert.Error(t, err)
}

func TestRSIStrategy(t *testing.T) {
	s, err := NewRSIStrategy(14, 30, 70)
	require.NoError(t, err)

	tests := []struct {
		name   string
		closes []float64
		want   dto.SignalAction
	}{
		{name: "leaves oversold", closes: append(trend(100, -1, 20), 96), want: dto.SignalBuy},
		{name: "leaves overbought", closes: append(trend(100, 1, 20), 104), want: dto.SignalSell},
		{name: "stays oversold", closes: trend(100, -1, 21), want: dto.SignalHold},
		{name: "stays overbought", closes: trend(100, 1, 21), want: dto.SignalHold},
		{name: "too short", closes: trend(100, 1, 15), want: dto.SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := s.Evaluate("AAA", window(tt.closes...), tt.closes[len(tt.closes)-1], nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, actionOf(sig))
		})
	}

	_, err = NewRSIStrategy(14, 70, 30)
	assert.Error(t, err)
}

func TestBollingerStrategy(t *testing.T) {
	s, err := NewBollingerStrategy(20, 2)
	require.NoError(t, err)

	alternating := make([]float64, 20)
	for i := range alternating {
		alternating[i] = 99
		if i%2 == 1 {
			alternating[i] = 101
		}
	}

	tests := []struct {
		name   string
		closes []float64
		price  float64
		want   dto.SignalAction
	}{
		{name: "below lower band", closes: alternating, price: 97, want: dto.SignalBuy},
		{name: "above upper band", closes: alternating, price: 103, want: dto.SignalSell},
		{name: "inside bands", closes: alternating, price: 100, want: dto.SignalHold},
		{name: "no variance", closes: trend(100, 0, 20), price: 50, want: dto.SignalHold},
		{name: "too short", closes: alternating[:10], price: 50, want: dto.SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := s.Evaluate("AAA", window(tt.closes...), tt.price, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, actionOf(sig))
			if sig != nil {
				assert.InDelta(t, 0.65, sig.Confidence, 1e-9)
				assert.Equal(t, tt.price, sig.Price)
			}
		})
	}
}

func TestStopLossStrategy(t *testing.T) {
	s := NewStopLossStrategy(8, 15)
	w := window(100, 101, 99)

	tests := []struct {
		name  string
		price float64
		avg   *float64
		want  dto.SignalAction
	}{
		{name: "stop loss against window start", price: 91, want: dto.SignalSell},
		{name: "take profit against window start", price: 116, want: dto.SignalSell},
		{name: "within band", price: 105, want: dto.SignalHold},
		{name: "entry price wins over window", price: 105, avg: ptr(120.0), want: dto.SignalSell},
		{name: "non-positive entry price ignored", price: 105, avg: ptr(0.0), want: dto.SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := s.Evaluate("AAA", w, tt.price, tt.avg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, actionOf(sig))
		})
	}
}

func TestSafeHavenStrategy(t *testing.T) {
	s := NewSafeHavenStrategy(8, []string{"gld"})
	w := window(100, 110, 105)

	sig, err := s.Evaluate("SPY", w, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.SignalSell, actionOf(sig))
	assert.InDelta(t, 0.8, sig.Confidence, 1e-9)

	sig, err = s.Evaluate("SPY", w, 105, nil)
	require.NoError(t, err)
	assert.Nil(t, sig)

	sig, err = s.Evaluate("GLD", w, 50, nil)
	require.NoError(t, err)
	assert.Nil(t, sig, "safe-haven tickers are never sold")
	assert.True(t, s.IsSafeHaven("Gld"))
}

func ptr[T any](v T) *T {
	return &v
}
