package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
	"golang-papertrade/internal/engine"
	"golang-papertrade/internal/repository"
	"golang-papertrade/pkg/logger"
	"golang-papertrade/pkg/utils"
)

// SizingService menghitung jumlah saham untuk satu posisi baru.
type SizingService interface {
	Calculate(ctx context.Context, req dto.SizingRequest) (*dto.SizingResult, error)
}

type sizingService struct {
	cfg       *config.Config
	log       *logger.Logger
	priceRepo repository.PriceRepository
}

func NewSizingService(cfg *config.Config, log *logger.Logger, priceRepo repository.PriceRepository) SizingService {
	return &sizingService{
		cfg:       cfg,
		log:       log,
		priceRepo: priceRepo,
	}
}

// Calculate sizes a position on the latest close. Without a stop loss in the
// request the stop is placed ATRMultiplier ATRs below the price.
func (s *sizingService) Calculate(ctx context.Context, req dto.SizingRequest) (*dto.SizingResult, error) {
	tickers := utils.NormalizeTickers([]string{req.Ticker})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: ticker is required", ErrInvalidRequest)
	}
	ticker := tickers[0]

	if req.StopLoss != nil && *req.StopLoss <= 0 {
		return nil, fmt.Errorf("%w: stop loss must be positive, got %v", ErrInvalidRequest, *req.StopLoss)
	}

	broker := strings.ToLower(strings.TrimSpace(req.Broker))
	if broker == "" {
		broker = strings.ToLower(s.cfg.Sizing.DefaultBroker)
	}
	fees, ok := s.cfg.Sizing.Brokers[broker]
	if !ok {
		return nil, fmt.Errorf("%w: %q, configured brokers are %v", ErrUnknownBroker, req.Broker, s.brokerNames())
	}

	capital := req.Capital
	if capital == 0 {
		capital = s.cfg.Sizing.CapitalTotal
	}

	log := s.log.FromContext(ctx).With(logger.StringField("ticker", ticker))
	ctx = logger.NewContext(ctx, log)

	series, err := fetchOne(ctx, log, s.priceRepo, ticker, s.cfg.Sizing.HistoryPeriod, dto.Interval1Day)
	if err != nil {
		return nil, err
	}

	var atr float64
	if req.StopLoss == nil {
		atr, err = engine.AverageTrueRange(series, s.cfg.Sizing.ATRPeriod)
		if err != nil {
			return nil, err
		}
	}

	currency := series.Currency
	if currency == "" {
		currency = s.cfg.Sizing.BaseCurrency
	}
	fx, err := s.fxRate(ctx, log, currency)
	if err != nil {
		return nil, err
	}

	result, err := engine.CalculateSizing(engine.SizingInput{
		Ticker:         ticker,
		Broker:         broker,
		Currency:       strings.ToUpper(currency),
		BaseCurrency:   strings.ToUpper(s.cfg.Sizing.BaseCurrency),
		Price:          series.Last().Close,
		FXRate:         fx,
		StopLoss:       req.StopLoss,
		ATR:            atr,
		ATRMultiplier:  s.cfg.Sizing.ATRMultiplier,
		Capital:        capital,
		MaxRiskPct:     s.cfg.Sizing.MaxRiskPct,
		MaxPositionPct: s.cfg.Sizing.MaxPositionPct,
		FarStopPct:     s.cfg.Sizing.FarStopPct,
		Commission:     engine.Commission(fees),
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "Position sized",
		logger.StringField("broker", broker),
		logger.StringField("stop_type", result.StopType),
		logger.IntField("shares", result.Shares),
		logger.StringField("limited_by", result.LimitedBy),
	)
	return result, nil
}

// fxRate converts one unit of currency into the base currency using the last
// close of the Yahoo "<FROM><TO>=X" pair.
func (s *sizingService) fxRate(ctx context.Context, log *logger.Logger, currency string) (float64, error) {
	base := s.cfg.Sizing.BaseCurrency
	if strings.EqualFold(currency, base) {
		return 1, nil
	}

	pair := strings.ToUpper(currency+base) + "=X"
	series, err := fetchOne(ctx, log, s.priceRepo, pair, dto.Period1Month, dto.Interval1Day)
	if err != nil {
		return 0, err
	}
	return series.Last().Close, nil
}

func (s *sizingService) brokerNames() []string {
	names := make([]string, 0, len(s.cfg.Sizing.Brokers))
	for name := range s.cfg.Sizing.Brokers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
