package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/cache"
	"golang-papertrade/pkg/common"
	"golang-papertrade/pkg/logger"
)

// PriceRepository provides the full price history of an instrument.
type PriceRepository interface {
	GetHistorical(ctx context.Context, ticker, period, interval string) (dto.PriceSeries, error)
}

type priceRepository struct {
	yahooRepo YahooFinanceRepository
	cache     cache.Cache
	ttl       time.Duration
	logger    *logger.Logger
}

// NewPriceRepository returns a PriceRepository that caches provider responses for ttl.
func NewPriceRepository(yahooRepo YahooFinanceRepository, inmemoryCache cache.Cache, ttl time.Duration, log *logger.Logger) PriceRepository {
	return &priceRepository{
		yahooRepo: yahooRepo,
		cache:     inmemoryCache,
		ttl:       ttl,
		logger:    log,
	}
}

func (r *priceRepository) GetHistorical(ctx context.Context, ticker, period, interval string) (dto.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := fmt.Sprintf(common.KEY_PRICE_HISTORY, ticker, period, interval)

	if cached, ok := cache.GetFromCache[dto.PriceSeries](r.cache, key); ok {
		r.logger.DebugContext(ctx, "Price history served from cache", logger.StringField("key", key))
		return cached, nil
	}

	series, err := r.yahooRepo.Get(ctx, dto.GetPriceHistoryParam{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
	})
	if err != nil {
		return dto.PriceSeries{}, err
	}

	r.cache.Set(key, *series, r.ttl)
	return *series, nil
}
