package strategy

import (
	"errors"
	"fmt"
	"sort"

	"golang-papertrade/config"
	"golang-papertrade/internal/contract"
	"golang-papertrade/internal/dto"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

type StrategyName string

const (
	StrategyStopLoss    StrategyName = "stop_loss"
	StrategyMACrossover StrategyName = "ma_crossover"
	StrategyRSI         StrategyName = "rsi"
	StrategyBollinger   StrategyName = "bollinger"
	StrategySafeHaven   StrategyName = "safe_haven"
)

// NamedStrategy is a strategy that can be looked up in a Registry.
type NamedStrategy interface {
	contract.Strategy
	GetName() StrategyName
}

// Registry maps strategy names to implementations. It is built once at startup
// and read-only afterwards.
type Registry struct {
	strategies map[StrategyName]NamedStrategy
}

func NewRegistry(strategies ...NamedStrategy) *Registry {
	r := &Registry{strategies: make(map[StrategyName]NamedStrategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.GetName()] = s
	}
	return r
}

// NewRegistryFromConfig registers every built-in strategy with the configured parameters.
func NewRegistryFromConfig(cfg config.Strategies) (*Registry, error) {
	maCrossover, err := NewMACrossoverStrategy(cfg.MACrossover.FastPeriod, cfg.MACrossover.SlowPeriod)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRSIStrategy(cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought)
	if err != nil {
		return nil, err
	}
	bollinger, err := NewBollingerStrategy(cfg.Bollinger.Period, cfg.Bollinger.StdDev)
	if err != nil {
		return nil, err
	}

	return NewRegistry(
		NewStopLossStrategy(cfg.StopLoss.StopLossPct, cfg.StopLoss.TakeProfitPct),
		maCrossover,
		rsi,
		bollinger,
		NewSafeHavenStrategy(cfg.SafeHaven.DrawdownPct, cfg.SafeHaven.SafeTickers),
	), nil
}

// Get resolves a strategy by name, failing with ErrUnknownStrategy.
func (r *Registry) Get(name string) (NamedStrategy, error) {
	s, ok := r.strategies[StrategyName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// List returns the sorted names of all registered strategies.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

func closes(window []dto.PricePoint) []float64 {
	out := make([]float64, len(window))
	for i, p := range window {
		out[i] = p.Close
	}
	return out
}

func sell(ticker string, price float64, confidence float64, reason string) *dto.Signal {
	return &dto.Signal{Action: dto.SignalSell, Ticker: ticker, Price: price, Reason: reason, Confidence: confidence}
}

func buy(ticker string, price float64, confidence float64, reason string) *dto.Signal {
	return &dto.Signal{Action: dto.SignalBuy, Ticker: ticker, Price: price, Reason: reason, Confidence: confidence}
}
