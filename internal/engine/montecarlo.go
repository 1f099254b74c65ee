package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"golang-papertrade/internal/contract"
	"golang-papertrade/internal/dto"
	"golang-papertrade/pkg/logger"
)

const (
	DefaultSimulations = 100
	MaxSimulations     = dto.MonteCarloMaxSimulations
	DefaultHorizon     = 90
	MaxHorizon         = dto.MonteCarloMaxHorizon
	MaxSeed            = 99999
)

// Profile thresholds. prob_loss is a fraction in [0, 1].
const (
	favorableMaxProbLoss   = 0.20
	favorableMinSharpe     = 0.8
	unfavorableMinProbLoss = 0.40
	unfavorableMaxSharpe   = 0.4
)

// LogReturns returns ln(c[i]/c[i-1]) for every consecutive pair of closes.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// NextBusinessDays returns n weekdays strictly after from, keeping its clock time.
func NextBusinessDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := from
	for len(days) < n {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// GeneratePaths bootstraps n synthetic close paths of the given horizon by
// resampling historical log-returns with replacement. All draws come from rng in
// order, so the same rng state always yields the same paths.
func GeneratePaths(hist dto.PriceSeries, n, horizon int, rng *rand.Rand) ([]dto.MonteCarloPath, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSimulations, n)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}

	pool := LogReturns(hist.Closes())
	if len(pool) == 0 {
		return nil, &DataUnavailableError{
			Ticker: hist.Ticker,
			Err:    fmt.Errorf("need at least 2 closes, got %d", hist.Len()),
		}
	}

	last := hist.Last()
	dates := NextBusinessDays(last.Timestamp, horizon)

	paths := make([]dto.MonteCarloPath, n)
	for p := range paths {
		points := make([]dto.PricePoint, horizon)
		cum := 0.0
		for j := range points {
			cum += pool[rng.IntN(len(pool))]
			price := last.Close * math.Exp(cum)
			points[j] = dto.PricePoint{
				Timestamp: dates[j],
				Open:      price,
				High:      price,
				Low:       price,
				Close:     price,
			}
		}
		paths[p] = dto.MonteCarloPath{
			PriceSeries: dto.PriceSeries{Ticker: hist.Ticker, Points: points},
			Index:       p,
		}
	}
	return paths, nil
}

// MonteCarloConfig holds the per-asset settings of a risk analysis run.
type MonteCarloConfig struct {
	StrategyName   string
	Simulations    int
	Horizon        int
	Seed           int64
	InitialCapital float64
	StopLossPct    *float64
}

func (c MonteCarloConfig) validate() error {
	if c.Simulations < 1 || c.Simulations > MaxSimulations {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidSimulations, c.Simulations, MaxSimulations)
	}
	if c.Horizon < 1 || c.Horizon > MaxHorizon {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidHorizon, c.Horizon, MaxHorizon)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCapital, c.InitialCapital)
	}
	if c.StopLossPct != nil && (*c.StopLossPct <= 0 || *c.StopLossPct >= 100) {
		return fmt.Errorf("%w: %v", ErrInvalidStopLoss, *c.StopLossPct)
	}
	return nil
}

type pathOutcome struct {
	returnPct   float64
	maxDrawdown float64
	sharpe      float64
	winRate     float64
}

// RiskAnalyzer runs a strategy across bootstrapped price paths.
type RiskAnalyzer struct {
	log       *logger.Logger
	evaluator *Evaluator
	workers   int
}

func NewRiskAnalyzer(log *logger.Logger, window, workers int) (*RiskAnalyzer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	evaluator, err := NewEvaluator(log, window)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &RiskAnalyzer{log: log, evaluator: evaluator, workers: workers}, nil
}

// RunAsset generates cfg.Simulations paths from hist using rng and aggregates the
// outcome distribution of strat over them.
func (a *RiskAnalyzer) RunAsset(ctx context.Context, hist dto.PriceSeries, strat contract.Strategy, cfg MonteCarloConfig, rng *rand.Rand) (*dto.AssetMonteCarloResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := hist.Validate(); err != nil {
		return nil, &DataUnavailableError{Ticker: hist.Ticker, Err: err}
	}

	paths, err := GeneratePaths(hist, cfg.Simulations, cfg.Horizon, rng)
	if err != nil {
		return nil, err
	}

	warmup := hist.Tail(a.evaluator.Window())
	outcomes := make([]pathOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for idx := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := a.runPath(gctx, paths[idx], warmup, strat, cfg)
			if err != nil {
				return err
			}
			outcomes[idx] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := summarize(outcomes)
	result.Ticker = hist.Ticker
	result.StrategyName = cfg.StrategyName
	result.NSimulations = cfg.Simulations
	result.Horizon = cfg.Horizon
	result.Seed = cfg.Seed

	a.log.InfoContext(ctx, "Monte Carlo analysis finished",
		logger.StringField("ticker", hist.Ticker),
		logger.StringField("strategy", cfg.StrategyName),
		logger.IntField("simulations", cfg.Simulations),
		logger.Float64Field("prob_loss", result.ProbLoss),
		logger.StringField("profile", string(result.Profile)),
	)

	return result, nil
}

func (a *RiskAnalyzer) runPath(ctx context.Context, path dto.MonteCarloPath, warmup []dto.PricePoint, strat contract.Strategy, cfg MonteCarloConfig) (pathOutcome, error) {
	points := path.Points
	w := a.evaluator.Window()

	signals, err := a.evaluator.walk(ctx, path.Ticker, points, 0, func(i int) []dto.PricePoint {
		if i >= w {
			return points[i-w : i : i]
		}
		need := w - i
		if need > len(warmup) {
			need = len(warmup)
		}
		window := make([]dto.PricePoint, 0, need+i)
		window = append(window, warmup[len(warmup)-need:]...)
		window = append(window, points[:i]...)
		if len(window) < 2 {
			return nil
		}
		return window
	}, strat)
	if err != nil {
		return pathOutcome{}, err
	}

	entries := signals.Entries
	if !signals.HasEntries() {
		entries = AlwaysInvested(signals.Entries, signals.Exits, 0)
	}

	closes := path.Closes()
	sim, err := Simulate(SimulationInput{
		Timestamps:  path.Timestamps(),
		Closes:      closes,
		Entries:     entries,
		Exits:       signals.Exits,
		InitialCash: cfg.InitialCapital,
		StopLossPct: cfg.StopLossPct,
	})
	if err != nil {
		return pathOutcome{}, err
	}

	stats := ComputeStatistics(sim, closes)
	return pathOutcome{
		returnPct:   stats.TotalReturnPct,
		maxDrawdown: stats.MaxDrawdownPct,
		sharpe:      stats.SharpeRatio,
		winRate:     stats.WinRatePct,
	}, nil
}

func summarize(outcomes []pathOutcome) *dto.AssetMonteCarloResult {
	n := len(outcomes)
	returns := make([]float64, n)
	drawdowns := make([]float64, n)
	sharpes := make([]float64, n)
	winRates := make([]float64, n)

	losses := 0
	for i, o := range outcomes {
		returns[i] = o.returnPct
		drawdowns[i] = o.maxDrawdown
		sharpes[i] = o.sharpe
		winRates[i] = o.winRate
		if o.returnPct < 0 {
			losses++
		}
	}
	slices.Sort(returns)
	slices.Sort(drawdowns)
	slices.Sort(sharpes)
	slices.Sort(winRates)

	r := &dto.AssetMonteCarloResult{
		ReturnMedian:  finiteOr(quantile(0.5, returns), 0),
		ReturnMean:    finiteOr(stat.Mean(returns, nil), 0),
		ReturnP10:     finiteOr(quantile(0.10, returns), 0),
		ReturnP90:     finiteOr(quantile(0.90, returns), 0),
		ReturnP05:     finiteOr(quantile(0.05, returns), 0),
		ProbLoss:      float64(losses) / float64(n),
		MaxDDMedian:   finiteOr(quantile(0.5, drawdowns), 0),
		MaxDDP95:      finiteOr(quantile(0.95, drawdowns), 0),
		SharpeMedian:  finiteOr(quantile(0.5, sharpes), 0),
		WinRateMedian: finiteOr(quantile(0.5, winRates), 0),
	}
	r.VaR95 = r.ReturnP05
	r.CVaR95 = finiteOr(tailMean(returns, r.VaR95), r.VaR95)
	r.Profile = Classify(r.ProbLoss, r.SharpeMedian)
	return r
}

// quantile expects sorted input. It interpolates linearly between the order
// statistics around position p*(n-1), the usual percentile definition in
// numerical tooling, and stays within those two neighbours.
func quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, n-1)
	frac := pos - float64(lo)

	v := sorted[lo] + frac*(sorted[hi]-sorted[lo])
	return math.Min(math.Max(v, sorted[lo]), sorted[hi])
}

// tailMean is the mean of the sorted values at or below threshold, or threshold
// itself when none qualify.
func tailMean(sorted []float64, threshold float64) float64 {
	var sum float64
	var count int
	for _, v := range sorted {
		if v > threshold {
			break
		}
		sum += v
		count++
	}
	if count == 0 {
		return threshold
	}
	return math.Min(sum/float64(count), threshold)
}

// Classify labels a return distribution by its loss probability and median Sharpe.
func Classify(probLoss, sharpeMedian float64) dto.RiskProfile {
	switch {
	case probLoss < favorableMaxProbLoss && sharpeMedian > favorableMinSharpe:
		return dto.ProfileFavorable
	case probLoss > unfavorableMinProbLoss || sharpeMedian < unfavorableMaxSharpe:
		return dto.ProfileUnfavorable
	default:
		return dto.ProfileModerate
	}
}
