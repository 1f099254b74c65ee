package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"golang-papertrade/config"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/httpclient"
	"golang-papertrade/pkg/logger"
	"golang-papertrade/pkg/utils"
)

// ErrNoData is returned when the provider has no usable bars for a ticker.
var ErrNoData = errors.New("no price data")

type YahooFinanceRepository interface {
	Get(ctx context.Context, param dto.GetPriceHistoryParam) (*dto.PriceSeries, error)
}

// yahooFinanceRepository fetches daily bars from the Yahoo Finance chart API.
type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	mu             sync.Mutex
	now            func() time.Time
}

// NewYahooFinanceRepository creates a new instance of yahooFinanceRepository.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	return newYahooFinanceRepository(cfg, log, httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout))
}

func newYahooFinanceRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient) *yahooFinanceRepository {
	maxPerMinute := cfg.YahooFinance.MaxRequestPerMinute
	if maxPerMinute < 1 {
		maxPerMinute = 1
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)

	return &yahooFinanceRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		now:            time.Now,
	}
}

func (r *yahooFinanceRepository) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.requestLimiter.Tokens() < 1 {
		r.logger.WarnContext(ctx, "Yahoo Finance API request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
		)
	}
	return r.requestLimiter.Wait(ctx)
}

func (r *yahooFinanceRepository) Get(ctx context.Context, param dto.GetPriceHistoryParam) (*dto.PriceSeries, error) {
	period1, period2, err := utils.PeriodRange(param.Period, r.now().UTC())
	if err != nil {
		return nil, err
	}
	interval, err := yahooInterval(param.Interval)
	if err != nil {
		return nil, err
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/" + param.Ticker
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1.Unix()),
		"period2":        fmt.Sprintf("%d", period2.Unix()),
		"interval":       interval,
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, headers, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: unknown symbol %s", ErrNoData, param.Ticker)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("ticker", param.Ticker),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}

	// Check for API errors
	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", yahooResp.Chart.Error)
	}

	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no result for symbol %s", ErrNoData, param.Ticker)
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no quote data for symbol %s", ErrNoData, param.Ticker)
	}

	quote := result.Indicators.Quote[0]
	points := make([]dto.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := valueAt(quote.Close, i)
		// Bars without a close (halts, holidays reported as null) are skipped.
		if closePrice <= 0 {
			continue
		}

		point := dto.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      orDefault(valueAt(quote.Open, i), closePrice),
			High:      orDefault(valueAt(quote.High, i), closePrice),
			Low:       orDefault(valueAt(quote.Low, i), closePrice),
			Close:     closePrice,
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			point.Volume = *quote.Volume[i]
		}

		if n := len(points); n > 0 && !point.Timestamp.After(points[n-1].Timestamp) {
			continue
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no valid bars for symbol %s", ErrNoData, param.Ticker)
	}

	return &dto.PriceSeries{Ticker: param.Ticker, Currency: result.Meta.Currency, Points: points}, nil
}

func yahooInterval(interval string) (string, error) {
	switch interval {
	case "", dto.Interval1Day:
		return "1d", nil
	case dto.Interval1Week:
		return "1wk", nil
	default:
		return "", fmt.Errorf("unsupported interval %q", interval)
	}
}

func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
