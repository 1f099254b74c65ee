package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
	"golang-papertrade/internal/engine"
	"golang-papertrade/internal/repository"
	"golang-papertrade/internal/strategy"
	"golang-papertrade/pkg/logger"
	"golang-papertrade/pkg/utils"
)

// BacktestService mendefinisikan interface untuk layanan backtesting.
type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.PortfolioBacktestResult, error)
}

type backtestService struct {
	cfg        *config.Config
	log        *logger.Logger
	priceRepo  repository.PriceRepository
	strategies *strategy.Registry
	backtester *engine.Backtester
	metrics    *Metrics
}

// NewBacktestService membuat instance baru dari backtestService.
func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	priceRepo repository.PriceRepository,
	strategies *strategy.Registry,
	metrics *Metrics,
) (BacktestService, error) {
	backtester, err := engine.NewBacktester(log, cfg.Backtest.Window)
	if err != nil {
		return nil, err
	}
	return &backtestService{
		cfg:        cfg,
		log:        log,
		priceRepo:  priceRepo,
		strategies: strategies,
		backtester: backtester,
		metrics:    metrics,
	}, nil
}

// RunBacktest menjalankan simulasi trading berdasarkan data historis untuk
// setiap ticker dengan modal yang dibagi rata.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.PortfolioBacktestResult, error) {
	start := time.Now()
	result, err := s.runBacktest(ctx, req)
	s.metrics.observeRun(runKindBacktest, s.strategies, req.Strategy, start, err)
	if result != nil {
		s.metrics.addFailures(runKindBacktest, len(result.Failures))
	}
	return result, err
}

func (s *backtestService) runBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.PortfolioBacktestResult, error) {
	tickers := utils.NormalizeTickers(req.Tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: at least one ticker is required", ErrInvalidRequest)
	}

	period := req.Period
	if period == "" {
		period = s.cfg.Backtest.Period
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	capital := req.InitialCapital
	if capital == 0 {
		capital = s.cfg.Backtest.InitialCapital
	}
	if capital < 0 {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidCapital, capital)
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

	runID := uuid.NewString()
	log := s.log.FromContext(ctx).With(logger.StringField("run_id", runID))
	ctx = logger.NewContext(ctx, log)
	start := time.Now()

	log.InfoContext(ctx, "Starting backtest",
		logger.StringsField("tickers", tickers),
		logger.StringField("strategy", req.Strategy),
		logger.StringField("period", period),
		logger.Float64Field("capital", capital),
	)

	fetched, err := fetchAll(ctx, log, s.priceRepo, tickers, period, s.cfg.Backtest.Interval, s.cfg.Backtest.MaxConcurrency)
	if err != nil {
		return nil, err
	}

	var failures []dto.AssetFailure
	available := make([]dto.PriceSeries, 0, len(fetched))
	for i, f := range fetched {
		if f.err != nil {
			failures = append(failures, failureOf(tickers[i], f.err))
			continue
		}
		available = append(available, f.series)
	}

	aligned := engine.AlignCalendars(available)
	for _, ticker := range aligned.Dropped {
		log.WarnContext(ctx, "Dropping instrument without overlapping trading days",
			logger.StringField("ticker", ticker),
		)
		failures = append(failures, dto.AssetFailure{Ticker: ticker, Reason: "no overlapping trading days with the rest of the basket"})
	}

	if len(aligned.Series) == 0 {
		log.WarnContext(ctx, "No instrument left to backtest", logger.IntField("failures", len(failures)))
		return nil, fmt.Errorf("%w: none of %v could be aligned on a common calendar", engine.ErrDegenerateInput, tickers)
	}

	capitalPerAsset := capital / float64(len(aligned.Series))
	cfg := engine.BacktestConfig{
		StrategyName:   req.Strategy,
		Period:         period,
		InitialCapital: capitalPerAsset,
		StopLossPct:    stopLoss,
	}

	runs := make([]*engine.Run, len(aligned.Series))
	runErrs := make([]error, len(aligned.Series))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Backtest.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.Backtest.MaxConcurrency)
	}
	for i, series := range aligned.Series {
		if !utils.ShouldContinue(gctx, log) {
			break
		}
		g.Go(func() error {
			run, err := s.backtester.Run(gctx, series, strat, cfg)
			if err != nil {
				if !isInstrumentFailure(err) {
					return err
				}
				runErrs[i] = err
				return nil
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]dto.BacktestResult, 0, len(runs))
	for i, run := range runs {
		if run == nil {
			failures = append(failures, failureOf(aligned.Series[i].Ticker, runErrs[i]))
			continue
		}
		results = append(results, run.Result)
	}

	portfolio, err := engine.Aggregate(results)
	if err != nil {
		return nil, err
	}
	portfolio.RunID = runID
	portfolio.Failures = failures

	log.InfoContext(ctx, "Backtest finished",
		logger.IntField("assets", len(results)),
		logger.IntField("failures", len(failures)),
		logger.Float64Field("total_return_pct", portfolio.TotalReturnPct),
		logger.DurationField("elapsed", time.Since(start)),
	)

	return portfolio, nil
}
