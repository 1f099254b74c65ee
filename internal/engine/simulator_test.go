package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/internal/dto"
)

func TestSimulate_RoundTrip(t *testing.T) {
	closes := []float64{10, 11, 12, 9, 10}
	sim, err := Simulate(SimulationInput{
		Timestamps:  dailyTimestamps(len(closes)),
		Closes:      closes,
		Entries:     []bool{true, false, false, false, true},
		Exits:       []bool{false, false, true, false, false},
		InitialCash: 1000,
	})
	require.NoError(t, err)

	require.Len(t, sim.Trades, 2)
	first := sim.Trades[0]
	assert.Equal(t, 10.0, first.EntryPrice)
	assert.InDelta(t, 100.0, first.Quantity, 1e-9)
	require.True(t, first.IsClosed())
	assert.Equal(t, 12.0, *first.ExitPrice)
	assert.InDelta(t, 200.0, *first.ProfitLoss, 1e-9)
	assert.Equal(t, dto.ExitReasonSignal, first.ExitReason)

	second := sim.Trades[1]
	assert.False(t, second.IsClosed(), "position open at the last bar stays open")
	assert.InDelta(t, 120.0, second.Quantity, 1e-9)

	want := []float64{1000, 1100, 1200, 1200, 1200}
	for i, p := range sim.Equity {
		assert.InDelta(t, want[i], p.Value, 1e-9, "bar %d", i)
	}
	assert.Len(t, sim.ClosedTrades(), 1)
	assert.InDelta(t, 200.0, sim.RealizedPnL(), 1e-9)
}

func TestSimulate_ExitIgnoredWhileFlatAndOnEntryBar(t *testing.T) {
	closes := []float64{10, 11, 12}
	sim, err := Simulate(SimulationInput{
		Timestamps:  dailyTimestamps(3),
		Closes:      closes,
		Entries:     []bool{false, true, false},
		Exits:       []bool{true, true, false},
		InitialCash: 100,
	})
	require.NoError(t, err)

	require.Len(t, sim.Trades, 1)
	assert.False(t, sim.Trades[0].IsClosed())
	assert.InDelta(t, 100*12.0/11.0, sim.FinalEquity(), 1e-9)
}

func TestSimulate_StopLoss(t *testing.T) {
	closes := []float64{100, 95, 91, 120}
	sim, err := Simulate(SimulationInput{
		Timestamps:  dailyTimestamps(len(closes)),
		Closes:      closes,
		Entries:     []bool{true, false, false, false},
		Exits:       make([]bool, len(closes)),
		InitialCash: 1000,
		StopLossPct: ptr(8.0),
	})
	require.NoError(t, err)

	require.Len(t, sim.Trades, 1)
	trade := sim.Trades[0]
	require.True(t, trade.IsClosed())
	assert.Equal(t, dto.ExitReasonStopLoss, trade.ExitReason)
	assert.Equal(t, 91.0, *trade.ExitPrice)
	assert.InDelta(t, -90.0, *trade.ProfitLoss, 1e-9)
	assert.InDelta(t, 910.0, sim.FinalEquity(), 1e-9)
}

func TestSimulate_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		in      SimulationInput
		wantErr error
	}{
		{
			name: "length mismatch",
			in: SimulationInput{
				Timestamps:  dailyTimestamps(3),
				Closes:      []float64{1, 2, 3},
				Entries:     []bool{true, false},
				Exits:       []bool{false, false, false},
				InitialCash: 100,
			},
			wantErr: ErrLengthMismatch,
		},
		{
			name: "zero capital",
			in: SimulationInput{
				Timestamps: dailyTimestamps(1),
				Closes:     []float64{1},
				Entries:    []bool{true},
				Exits:      []bool{false},
			},
			wantErr: ErrInvalidCapital,
		},
		{
			name: "stop loss out of range",
			in: SimulationInput{
				Timestamps:  dailyTimestamps(1),
				Closes:      []float64{1},
				Entries:     []bool{true},
				Exits:       []bool{false},
				InitialCash: 100,
				StopLossPct: ptr(100.0),
			},
			wantErr: ErrInvalidStopLoss,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Cash plus position value equals initial cash plus realized P&L plus the
// unrealized P&L of the open position, on every bar.
func TestSimulate_MoneyConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 50; run++ {
		n := 20 + rng.IntN(80)
		closes := make([]float64, n)
		price := 50.0
		entries := make([]bool, n)
		exits := make([]bool, n)
		for i := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.1
			closes[i] = price
			entries[i] = rng.Float64() < 0.2
			exits[i] = rng.Float64() < 0.2
		}
		var stop *float64
		if run%2 == 0 {
			stop = ptr(5.0)
		}
		ts := dailyTimestamps(n)

		const initial = 10_000.0
		sim, err := Simulate(SimulationInput{
			Timestamps:  ts,
			Closes:      closes,
			Entries:     entries,
			Exits:       exits,
			InitialCash: initial,
			StopLossPct: stop,
		})
		require.NoError(t, err)

		for i := range closes {
			expected := initial
			for _, tr := range sim.Trades {
				assert.GreaterOrEqual(t, tr.Quantity, 0.0)
				if tr.EntryTime.After(ts[i]) {
					continue
				}
				if tr.ExitTime != nil && !tr.ExitTime.After(ts[i]) {
					expected += *tr.ProfitLoss
					continue
				}
				expected += tr.Quantity * (closes[i] - tr.EntryPrice)
			}
			assert.InDelta(t, expected, sim.Equity[i].Value, 1e-6, "run %d bar %d", run, i)
		}
	}
}
