package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/httpclient"
	"golang-papertrade/pkg/logger"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "SPY", "currency": "USD", "exchangeTimezoneName": "America/New_York", "regularMarketPrice": 103},
      "timestamp": [1704205800, 1704292200, 1704378600, 1704378600, 1704465000],
      "indicators": {"quote": [{
        "open":   [100, 101, null, 102, 103],
        "high":   [101, 102, null, 103, 104],
        "low":    [99, 100, null, 101, 102],
        "close":  [100.5, 101.5, null, 102.5, 103.5],
        "volume": [1000, 1100, null, 1200, null]
      }]}
    }],
    "error": null
  }
}`

func newTestYahooRepo(t *testing.T, handler http.HandlerFunc) *yahooFinanceRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.YahooFinance.MaxRequestPerMinute = 6000
	repo := newYahooFinanceRepository(cfg, logger.NewNop(), httpclient.New(server.URL, 5*time.Second))
	repo.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return repo
}

func TestYahooFinanceRepository_Get(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"interval": r.URL.Query().Get("interval"),
			"period1":  r.URL.Query().Get("period1"),
			"period2":  r.URL.Query().Get("period2"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	})

	series, err := repo.Get(context.Background(), dto.GetPriceHistoryParam{Ticker: "SPY", Period: "1y", Interval: "1d"})
	require.NoError(t, err)

	assert.Equal(t, "/SPY", gotPath)
	assert.Equal(t, "1d", gotQuery["interval"])
	assert.Equal(t, "1685577600", gotQuery["period1"])
	assert.Equal(t, "1717200000", gotQuery["period2"])

	assert.Equal(t, "SPY", series.Ticker)
	assert.Equal(t, "USD", series.Currency)
	require.Equal(t, 3, series.Len(), "null and duplicate bars are dropped")
	require.NoError(t, series.Validate())
	assert.Equal(t, []float64{100.5, 101.5, 102.5}, series.Closes())
	assert.Equal(t, int64(1100), series.Points[1].Volume)
	assert.Equal(t, time.Unix(1704205800, 0).UTC(), series.First().Timestamp)
}

func TestYahooFinanceRepository_Get_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		param      dto.GetPriceHistoryParam
		wantNoData bool
	}{
		{
			name:       "unknown symbol",
			status:     http.StatusNotFound,
			body:       `{"chart":{"result":null,"error":{"code":"Not Found"}}}`,
			param:      dto.GetPriceHistoryParam{Ticker: "NOPE", Period: "1y"},
			wantNoData: true,
		},
		{
			name:       "empty result",
			status:     http.StatusOK,
			body:       `{"chart":{"result":[],"error":null}}`,
			param:      dto.GetPriceHistoryParam{Ticker: "EMPTY", Period: "1y"},
			wantNoData: true,
		},
		{
			name:       "only null closes",
			status:     http.StatusOK,
			body:       `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"close":[null,null]}]}}],"error":null}}`,
			param:      dto.GetPriceHistoryParam{Ticker: "NULL", Period: "1y"},
			wantNoData: true,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			param:  dto.GetPriceHistoryParam{Ticker: "SPY", Period: "1y"},
		},
		{
			name:  "invalid period",
			param: dto.GetPriceHistoryParam{Ticker: "SPY", Period: "10y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestYahooRepo(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			series, err := repo.Get(context.Background(), tt.param)
			require.Error(t, err)
			assert.Nil(t, series)
			assert.Equal(t, tt.wantNoData, errors.Is(err, ErrNoData))
		})
	}
}
