package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"golang-papertrade/internal/dto"
	"golang-papertrade/internal/engine"
	"golang-papertrade/internal/repository"
	"golang-papertrade/pkg/logger"
	"golang-papertrade/pkg/utils"
)

// fetchResult holds the price history of one ticker or the reason it is unusable.
type fetchResult struct {
	series dto.PriceSeries
	err    error
}

// fetchAll loads the history of every ticker with at most limit requests in
// flight. Per-ticker failures are returned as DataUnavailableError in the slot
// of that ticker; only cancellation fails the whole call.
func fetchAll(ctx context.Context, log *logger.Logger, repo repository.PriceRepository, tickers []string, period, interval string, limit int) ([]fetchResult, error) {
	results := make([]fetchResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, ticker := range tickers {
		if !utils.ShouldContinue(gctx, log) {
			break
		}

		g.Go(func() error {
			series, err := repo.GetHistorical(gctx, ticker, period, interval)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.WarnContext(ctx, "Failed to get price history",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err),
				)
				results[i] = fetchResult{err: &engine.DataUnavailableError{Ticker: ticker, Err: err}}
				return nil
			}

			series.Ticker = ticker
			if series.Len() == 0 {
				results[i] = fetchResult{err: &engine.DataUnavailableError{Ticker: ticker}}
				return nil
			}
			if err := series.Validate(); err != nil {
				results[i] = fetchResult{err: &engine.DataUnavailableError{Ticker: ticker, Err: err}}
				return nil
			}
			results[i] = fetchResult{series: series}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func failureOf(ticker string, err error) dto.AssetFailure {
	return dto.AssetFailure{Ticker: ticker, Reason: err.Error()}
}

// isInstrumentFailure reports whether err only concerns a single instrument.
func isInstrumentFailure(err error) bool {
	var dataErr *engine.DataUnavailableError
	return errors.As(err, &dataErr)
}

func validatePeriod(period string) error {
	if !utils.ContainsString(dto.GetValidPeriods(), period) {
		return fmt.Errorf("%w: %q, valid periods are %v", ErrInvalidPeriod, period, dto.GetValidPeriods())
	}
	return nil
}

// fetchOne loads a single history with the same failure reporting as fetchAll.
func fetchOne(ctx context.Context, log *logger.Logger, repo repository.PriceRepository, ticker, period, interval string) (dto.PriceSeries, error) {
	results, err := fetchAll(ctx, log, repo, []string{ticker}, period, interval, 1)
	if err != nil {
		return dto.PriceSeries{}, err
	}
	return results[0].series, results[0].err
}
