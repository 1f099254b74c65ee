package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
	"golang-papertrade/internal/engine"
	"golang-papertrade/internal/repository"
	"golang-papertrade/internal/strategy"
	"golang-papertrade/pkg/logger"
	"golang-papertrade/pkg/utils"
)

type MonteCarloService interface {
	Run(ctx context.Context, req dto.MonteCarloRequest) (*dto.MonteCarloReport, error)
}

type monteCarloService struct {
	cfg        *config.Config
	log        *logger.Logger
	priceRepo  repository.PriceRepository
	strategies *strategy.Registry
	analyzer   *engine.RiskAnalyzer
	metrics    *Metrics
	newSeed    func() int64
}

func NewMonteCarloService(
	cfg *config.Config,
	log *logger.Logger,
	priceRepo repository.PriceRepository,
	strategies *strategy.Registry,
	metrics *Metrics,
) (MonteCarloService, error) {
	analyzer, err := engine.NewRiskAnalyzer(log, cfg.Backtest.Window, cfg.MonteCarlo.Workers)
	if err != nil {
		return nil, err
	}
	return &monteCarloService{
		cfg:        cfg,
		log:        log,
		priceRepo:  priceRepo,
		strategies: strategies,
		analyzer:   analyzer,
		metrics:    metrics,
		newSeed: func() int64 {
			return rand.Int64N(engine.MaxSeed + 1)
		},
	}, nil
}

// Run analyzes every requested ticker independently. Each ticker draws from its
// own stream derived from the seed and its position in the request, so results
// do not depend on scheduling.
func (s *monteCarloService) Run(ctx context.Context, req dto.MonteCarloRequest) (*dto.MonteCarloReport, error) {
	start := time.Now()
	report, err := s.run(ctx, req)
	s.metrics.observeRun(runKindMonteCarlo, s.strategies, req.Strategy, start, err)
	if report != nil {
		s.metrics.addFailures(runKindMonteCarlo, len(report.Failures))
	}
	return report, err
}

func (s *monteCarloService) run(ctx context.Context, req dto.MonteCarloRequest) (*dto.MonteCarloReport, error) {
	tickers := utils.NormalizeTickers(req.Tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: at least one ticker is required", ErrInvalidRequest)
	}

	sims := req.Simulations
	if sims == 0 {
		sims = s.cfg.MonteCarlo.DefaultSimulations
	}
	if sims < 1 || sims > s.cfg.MonteCarlo.MaxSimulations {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", engine.ErrInvalidSimulations, sims, s.cfg.MonteCarlo.MaxSimulations)
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = s.cfg.MonteCarlo.DefaultHorizon
	}
	if horizon < 1 || horizon > s.cfg.MonteCarlo.MaxHorizon {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", engine.ErrInvalidHorizon, horizon, s.cfg.MonteCarlo.MaxHorizon)
	}

	stopLoss := req.StopLossPct
	if stopLoss == nil {
		stopLoss = s.cfg.Backtest.StopLossPct
	}
	if stopLoss != nil && (*stopLoss <= 0 || *stopLoss >= 100) {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidStopLoss, *stopLoss)
	}

	strat, err := s.strategies.Get(req.Strategy)
	if err != nil {
		return nil, err
	}

	seed := s.newSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	runID := uuid.NewString()
	log := s.log.FromContext(ctx).With(logger.StringField("run_id", runID))
	ctx = logger.NewContext(ctx, log)
	start := time.Now()

	log.InfoContext(ctx, "Starting Monte Carlo analysis",
		logger.StringsField("tickers", tickers),
		logger.StringField("strategy", req.Strategy),
		logger.IntField("simulations", sims),
		logger.IntField("horizon", horizon),
		logger.Field("seed", seed),
	)

	fetched, err := fetchAll(ctx, log, s.priceRepo, tickers, s.cfg.MonteCarlo.HistoryPeriod, dto.Interval1Day, s.cfg.Backtest.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	cfg := engine.MonteCarloConfig{
		StrategyName:   req.Strategy,
		Simulations:    sims,
		Horizon:        horizon,
		Seed:           seed,
		InitialCapital: s.cfg.MonteCarlo.InitialCapital,
		StopLossPct:    stopLoss,
	}

	results := make([]*dto.AssetMonteCarloResult, len(tickers))
	errs := make([]error, len(tickers))

	// Paths of one ticker are already spread over the analyzer's workers.
	for i, f := range fetched {
		if f.err != nil {
			errs[i] = f.err
			continue
		}
		if !utils.ShouldContinue(ctx, log) {
			return nil, ctx.Err()
		}

		rng := rand.New(rand.NewPCG(uint64(seed), uint64(i)))
		result, err := s.analyzer.RunAsset(ctx, f.series, strat, cfg, rng)
		if err != nil {
			if !isInstrumentFailure(err) {
				return nil, err
			}
			log.WarnContext(ctx, "Skipping instrument", logger.StringField("ticker", tickers[i]), logger.ErrorField(err))
			errs[i] = err
			continue
		}
		results[i] = result
	}

	report := &dto.MonteCarloReport{
		RunID:        runID,
		StrategyName: req.Strategy,
		Seed:         seed,
		Simulations:  sims,
		Horizon:      horizon,
		Results:      make([]dto.AssetMonteCarloResult, 0, len(tickers)),
	}
	for i, r := range results {
		if r == nil {
			if errs[i] != nil {
				report.Failures = append(report.Failures, failureOf(tickers[i], errs[i]))
			}
			continue
		}
		report.Results = append(report.Results, *r)
	}

	if len(report.Results) == 0 {
		return nil, fmt.Errorf("%w: no price history for any of %v", engine.ErrDegenerateInput, tickers)
	}

	log.InfoContext(ctx, "Monte Carlo analysis finished",
		logger.IntField("assets", len(report.Results)),
		logger.IntField("failures", len(report.Failures)),
		logger.DurationField("elapsed", time.Since(start)),
	)

	return report, nil
}
