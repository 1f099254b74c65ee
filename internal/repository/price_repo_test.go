package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/cache"
	"golang-papertrade/pkg/logger"
)

type fakeYahooRepo struct {
	calls []dto.GetPriceHistoryParam
	err   error
}

func (f *fakeYahooRepo) Get(_ context.Context, param dto.GetPriceHistoryParam) (*dto.PriceSeries, error) {
	f.calls = append(f.calls, param)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PriceSeries{
		Ticker: param.Ticker,
		Points: []dto.PricePoint{{Timestamp: time.Unix(0, 0).UTC(), Close: 10}},
	}, nil
}

func TestPriceRepository_GetHistorical_Caches(t *testing.T) {
	yahoo := &fakeYahooRepo{}
	repo := NewPriceRepository(yahoo, cache.NewCache(time.Minute, time.Minute), time.Minute, logger.NewNop())

	first, err := repo.GetHistorical(context.Background(), " spy ", "1y", "1d")
	require.NoError(t, err)
	second, err := repo.GetHistorical(context.Background(), "SPY", "1y", "1d")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "SPY", first.Ticker)
	require.Len(t, yahoo.calls, 1)
	assert.Equal(t, dto.GetPriceHistoryParam{Ticker: "SPY", Period: "1y", Interval: "1d"}, yahoo.calls[0])

	_, err = repo.GetHistorical(context.Background(), "SPY", "2y", "1d")
	require.NoError(t, err)
	assert.Len(t, yahoo.calls, 2, "a different period is a different cache entry")
}

func TestPriceRepository_GetHistorical_ErrorsAreNotCached(t *testing.T) {
	yahoo := &fakeYahooRepo{err: ErrNoData}
	repo := NewPriceRepository(yahoo, cache.NewCache(time.Minute, time.Minute), time.Minute, logger.NewNop())

	for i := 0; i < 2; i++ {
		_, err := repo.GetHistorical(context.Background(), "NOPE", "1y", "1d")
		assert.ErrorIs(t, err, ErrNoData)
	}
	assert.Len(t, yahoo.calls, 2)
}
