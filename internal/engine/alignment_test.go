package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/internal/dto"
)

func TestAlignCalendars(t *testing.T) {
	tests := []struct {
		name        string
		series      []dto.PriceSeries
		wantTickers []string
		wantDropped []string
		wantLen     int
	}{
		{
			name:        "single instrument untouched",
			series:      []dto.PriceSeries{makeSeries("AAA", testStart, rising(10))},
			wantTickers: []string{"AAA"},
			wantLen:     10,
		},
		{
			name: "partial overlap truncates to shared days",
			series: []dto.PriceSeries{
				makeSeries("AAA", testStart, rising(10)),
				makeSeries("BBB", testStart.AddDate(0, 0, 4), rising(10)),
			},
			wantTickers: []string{"AAA", "BBB"},
			wantLen:     6,
		},
		{
			name: "outlier dropped",
			series: []dto.PriceSeries{
				makeSeries("AAA", testStart, rising(10)),
				makeSeries("BBB", testStart.AddDate(1, 0, 0), rising(10)),
				makeSeries("CCC", testStart, rising(10)),
			},
			wantTickers: []string{"AAA", "CCC"},
			wantDropped: []string{"BBB"},
			wantLen:     10,
		},
		{
			name: "one shared day is not enough",
			series: []dto.PriceSeries{
				makeSeries("AAA", testStart, rising(5)),
				makeSeries("BBB", testStart.AddDate(0, 0, 4), rising(5)),
			},
			wantDropped: []string{"AAA", "BBB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignCalendars(tt.series)

			var tickers []string
			for _, s := range got.Series {
				tickers = append(tickers, s.Ticker)
				assert.Equal(t, tt.wantLen, s.Len())
				require.NoError(t, s.Validate())
			}
			assert.Equal(t, tt.wantTickers, tickers)
			assert.Equal(t, tt.wantDropped, got.Dropped)
		})
	}
}

func TestAlignCalendars_SameDaysDifferentClock(t *testing.T) {
	a := makeSeries("AAA", testStart, rising(5))
	b := makeSeries("BBB", testStart.Add(14*time.Hour), rising(5))

	got := AlignCalendars([]dto.PriceSeries{a, b})
	require.Len(t, got.Series, 2)
	assert.Equal(t, 5, got.Series[0].Len())
	assert.Empty(t, got.Dropped)
}
