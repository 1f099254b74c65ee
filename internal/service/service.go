package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"golang-papertrade/config"
	"golang-papertrade/internal/repository"
	"golang-papertrade/internal/strategy"
	"golang-papertrade/pkg/logger"
)

type Service struct {
	BacktestService   BacktestService
	MonteCarloService MonteCarloService
	SizingService     SizingService
	Strategies        *strategy.Registry
	Metrics           *Metrics
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	reg prometheus.Registerer,
) (*Service, error) {
	strategies, err := strategy.NewRegistryFromConfig(cfg.Strategies)
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics(reg)

	backtestService, err := NewBacktestService(cfg, log, repo.PriceRepo, strategies, metrics)
	if err != nil {
		return nil, err
	}

	monteCarloService, err := NewMonteCarloService(cfg, log, repo.PriceRepo, strategies, metrics)
	if err != nil {
		return nil, err
	}

	return &Service{
		BacktestService:   backtestService,
		MonteCarloService: monteCarloService,
		SizingService:     NewSizingService(cfg, log, repo.PriceRepo),
		Strategies:        strategies,
		Metrics:           metrics,
	}, nil
}
