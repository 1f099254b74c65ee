package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/internal/dto"
)

var (
	fixedFees = Commission{Fixed: 2}
	pctFees   = Commission{Pct: 0.12, Min: 3, Max: 25}
)

func TestCommission_Calculate(t *testing.T) {
	tests := []struct {
		name    string
		c       Commission
		nominal float64
		want    float64
	}{
		{name: "fixed ignores nominal", c: fixedFees, nominal: 10000, want: 2},
		{name: "pct above minimum", c: pctFees, nominal: 5000, want: 6},
		{name: "pct raised to minimum", c: pctFees, nominal: 1000, want: 3},
		{name: "pct capped at maximum", c: pctFees, nominal: 50000, want: 25},
		{name: "no fees", c: Commission{}, nominal: 1000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.c.Calculate(tt.nominal), 1e-9)
		})
	}
}

func sizingInput(mutate func(in *SizingInput)) SizingInput {
	in := SizingInput{
		Ticker:         "ACME",
		Broker:         "paper",
		Currency:       "EUR",
		BaseCurrency:   "EUR",
		Price:          100,
		FXRate:         1,
		StopLoss:       ptr(95.0),
		ATRMultiplier:  2,
		Capital:        20000,
		MaxRiskPct:     0.75,
		MaxPositionPct: 20,
		FarStopPct:     15,
		Commission:     fixedFees,
	}
	if mutate != nil {
		mutate(&in)
	}
	return in
}

func TestCalculateSizing(t *testing.T) {
	tests := []struct {
		name       string
		in         SizingInput
		shares     int
		limitedBy  string
		stopLoss   float64
		nominal    float64
		commission float64
		actualRisk float64
		warnings   int
	}{
		{
			name:   "fixed fees bounded by risk",
			in:     sizingInput(nil),
			shares: 29, limitedBy: dto.SizingLimitRisk, stopLoss: 95,
			nominal: 2900, commission: 2, actualRisk: 149,
		},
		{
			name:   "tight stop bounded by position size",
			in:     sizingInput(func(in *SizingInput) { in.StopLoss = ptr(99.0) }),
			shares: 40, limitedBy: dto.SizingLimitNominal, stopLoss: 99,
			nominal: 4000, commission: 2, actualRisk: 44,
		},
		{
			name:   "percentage fees converge",
			in:     sizingInput(func(in *SizingInput) { in.Commission = pctFees }),
			shares: 28, limitedBy: dto.SizingLimitRisk, stopLoss: 95,
			nominal: 2800, commission: 3.36, actualRisk: 146.72,
		},
		{
			name: "atr stop",
			in: sizingInput(func(in *SizingInput) {
				in.StopLoss = nil
				in.ATR = 3
			}),
			shares: 24, limitedBy: dto.SizingLimitRisk, stopLoss: 94,
			nominal: 2400, commission: 2, actualRisk: 148,
		},
		{
			name:   "far stop warns",
			in:     sizingInput(func(in *SizingInput) { in.StopLoss = ptr(80.0) }),
			shares: 7, limitedBy: dto.SizingLimitRisk, stopLoss: 80,
			nominal: 700, commission: 2, actualRisk: 144, warnings: 1,
		},
		{
			name:   "budget too small for the distance",
			in:     sizingInput(func(in *SizingInput) { in.Capital = 1000 }),
			shares: 0, limitedBy: dto.SizingLimitRisk, stopLoss: 95,
			nominal: 0, commission: 2, actualRisk: 0, warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSizing(tt.in)
			require.NoError(t, err)

			assert.Equal(t, tt.shares, got.Shares)
			assert.Equal(t, tt.limitedBy, got.LimitedBy)
			assert.InDelta(t, tt.stopLoss, got.StopLoss, 1e-9)
			assert.InDelta(t, tt.nominal, got.Nominal, 1e-9)
			assert.InDelta(t, tt.commission, got.BuyCommission, 1e-9)
			assert.InDelta(t, tt.commission, got.SellCommission, 1e-9)
			assert.InDelta(t, tt.actualRisk, got.ActualRisk, 1e-9)
			assert.LessOrEqual(t, got.ActualRisk, got.MaxRisk)
			assert.Len(t, got.Warnings, tt.warnings)
		})
	}
}

func TestCalculateSizing_StopTypes(t *testing.T) {
	manual, err := CalculateSizing(sizingInput(nil))
	require.NoError(t, err)
	assert.Equal(t, dto.StopTypeManual, manual.StopType)
	assert.Nil(t, manual.ATR)
	assert.InDelta(t, 5, manual.DistancePct, 1e-9)
	assert.InDelta(t, 150, manual.MaxRisk, 1e-9)
	assert.InDelta(t, 14.5, manual.PortfolioPct, 1e-9)

	auto, err := CalculateSizing(sizingInput(func(in *SizingInput) {
		in.StopLoss = nil
		in.ATR = 3
	}))
	require.NoError(t, err)
	assert.Equal(t, dto.StopTypeATR, auto.StopType)
	require.NotNil(t, auto.ATR)
	assert.InDelta(t, 3, *auto.ATR, 1e-9)
}

func TestCalculateSizing_ConvertsCurrency(t *testing.T) {
	got, err := CalculateSizing(sizingInput(func(in *SizingInput) {
		in.Currency = "USD"
		in.Price = 110
		in.FXRate = 0.9
		in.StopLoss = ptr(100.0)
	}))
	require.NoError(t, err)

	assert.InDelta(t, 99, got.Price, 1e-9)
	assert.InDelta(t, 90, got.StopLoss, 1e-9)
	assert.InDelta(t, 9, got.Distance, 1e-9)
	assert.Equal(t, 16, got.Shares)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "USD")
}

func TestCalculateSizing_StopAbovePrice(t *testing.T) {
	got, err := CalculateSizing(sizingInput(func(in *SizingInput) { in.StopLoss = ptr(105.0) }))
	require.NoError(t, err)

	assert.Zero(t, got.Shares)
	assert.Zero(t, got.Nominal)
	assert.Zero(t, got.ActualRisk)
	assert.InDelta(t, -5, got.Distance, 1e-9)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "below the current price")
}

func TestCalculateSizing_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *SizingInput)
	}{
		{name: "no capital", mutate: func(in *SizingInput) { in.Capital = 0 }},
		{name: "no price", mutate: func(in *SizingInput) { in.Price = 0 }},
		{name: "no fx rate", mutate: func(in *SizingInput) { in.FXRate = 0 }},
		{name: "no risk budget", mutate: func(in *SizingInput) { in.MaxRiskPct = 0 }},
		{name: "atr stop without atr", mutate: func(in *SizingInput) { in.StopLoss = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateSizing(sizingInput(tt.mutate))
			assert.True(t, errors.Is(err, ErrInvalidSizing), "got %v", err)
		})
	}
}

func TestAverageTrueRange(t *testing.T) {
	t.Run("steady trend", func(t *testing.T) {
		atr, err := AverageTrueRange(makeSeries("ACME", testStart, rising(30)), 14)
		require.NoError(t, err)
		assert.InDelta(t, 1, atr, 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := AverageTrueRange(makeSeries("ACME", testStart, rising(14)), 14)
		var dataErr *DataUnavailableError
		assert.True(t, errors.As(err, &dataErr))
	})

	t.Run("flat history", func(t *testing.T) {
		_, err := AverageTrueRange(makeSeries("ACME", testStart, constant(30, 50)), 14)
		var dataErr *DataUnavailableError
		assert.True(t, errors.As(err, &dataErr))
	})

	t.Run("bad period", func(t *testing.T) {
		_, err := AverageTrueRange(makeSeries("ACME", testStart, rising(30)), 0)
		assert.True(t, errors.Is(err, ErrInvalidSizing))
	})
}
