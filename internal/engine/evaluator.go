package engine

import (
	"context"
	"fmt"
	"slices"

	"golang-papertrade/internal/contract"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/logger"
)

// DefaultWindow is the number of preceding bars a strategy sees per evaluation.
const DefaultWindow = 60

// Signals holds the entry/exit flags of one run, aligned 1:1 with its bars.
type Signals struct {
	Entries     []bool
	Exits       []bool
	Diagnostics []dto.Diagnostic
}

func newSignals(n int) Signals {
	return Signals{
		Entries: make([]bool, n),
		Exits:   make([]bool, n),
	}
}

// HasEntries reports whether any entry flag is set.
func (s Signals) HasEntries() bool {
	return slices.Contains(s.Entries, true)
}

// barOutcome is the result of evaluating a single bar: a signal or a diagnostic.
type barOutcome struct {
	signal     *dto.Signal
	diagnostic *dto.Diagnostic
}

// windowFunc returns the context bars for bar i; an empty result skips the bar.
type windowFunc func(i int) []dto.PricePoint

// Evaluator replays a strategy bar by bar without look-ahead.
type Evaluator struct {
	log    *logger.Logger
	window int
}

func NewEvaluator(log *logger.Logger, window int) (*Evaluator, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Evaluator{log: log, window: window}, nil
}

func (e *Evaluator) Window() int {
	return e.window
}

// Evaluate walks bars [W, N) of series. Bar i is evaluated with bars [i-W, i)
// and the close of bar i only.
func (e *Evaluator) Evaluate(ctx context.Context, series dto.PriceSeries, strat contract.Strategy) (Signals, error) {
	points := series.Points
	return e.walk(ctx, series.Ticker, points, e.window, func(i int) []dto.PricePoint {
		// Capacity is capped so a strategy appending to its window cannot clobber bar i.
		return points[i-e.window : i : i]
	}, strat)
}

func (e *Evaluator) walk(ctx context.Context, ticker string, points []dto.PricePoint, start int, windowAt windowFunc, strat contract.Strategy) (Signals, error) {
	signals := newSignals(len(points))

	for i := start; i < len(points); i++ {
		if err := ctx.Err(); err != nil {
			return Signals{}, err
		}

		window := windowAt(i)
		if len(window) == 0 {
			continue
		}

		outcome := e.evaluateBar(ticker, i, points[i], window, strat)
		if outcome.diagnostic != nil {
			signals.Diagnostics = append(signals.Diagnostics, *outcome.diagnostic)
			e.log.DebugContext(ctx, "Strategy raised, bar treated as no-signal",
				logger.StringField("ticker", ticker),
				logger.IntField("bar", i),
				logger.StringField("error", outcome.diagnostic.Error),
			)
			continue
		}

		switch {
		case outcome.signal.IsBuy():
			signals.Entries[i] = true
		case outcome.signal.IsSell():
			signals.Exits[i] = true
		}
	}

	if len(signals.Diagnostics) > 0 {
		e.log.WarnContext(ctx, "Strategy failed on some bars",
			logger.StringField("ticker", ticker),
			logger.IntField("failed_bars", len(signals.Diagnostics)),
		)
	}

	return signals, nil
}

func (e *Evaluator) evaluateBar(ticker string, i int, bar dto.PricePoint, window []dto.PricePoint, strat contract.Strategy) (outcome barOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = failedBar(i, bar, fmt.Errorf("panic: %v", r))
		}
	}()

	signal, err := strat.Evaluate(ticker, window, bar.Close, nil)
	if err != nil {
		return failedBar(i, bar, err)
	}
	return barOutcome{signal: signal}
}

func failedBar(i int, bar dto.PricePoint, err error) barOutcome {
	evalErr := &StrategyEvaluationError{Bar: i, Err: err}
	return barOutcome{diagnostic: &dto.Diagnostic{
		Bar:       i,
		Timestamp: bar.Timestamp,
		Error:     evalErr.Error(),
	}}
}

// AlwaysInvested turns an exit-only entry sequence into a continuously invested
// one: an entry at warmup and one on the bar after every exit. Sequences that
// already contain an entry are returned unchanged. The result never aliases entries.
func AlwaysInvested(entries, exits []bool, warmup int) []bool {
	out := slices.Clone(entries)
	if slices.Contains(entries, true) {
		return out
	}

	if warmup >= 0 && warmup < len(out) {
		out[warmup] = true
	}
	for i, exit := range exits {
		if exit && i+1 < len(out) {
			out[i+1] = true
		}
	}
	return out
}
