package repository

import (
	"golang-papertrade/config"
	"golang-papertrade/pkg/cache"
	"golang-papertrade/pkg/logger"
)

type Repository struct {
	YahooFinanceRepo YahooFinanceRepository
	PriceRepo        PriceRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) *Repository {
	yahooRepo := NewYahooFinanceRepository(cfg, log)

	return &Repository{
		YahooFinanceRepo: yahooRepo,
		PriceRepo:        NewPriceRepository(yahooRepo, inmemoryCache, cfg.Cache.DefaultExpiration, log),
	}
}
