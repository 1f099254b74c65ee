package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/markcheno/go-talib"

	"golang-papertrade/internal/dto"
)

// Commission is a broker fee schedule: fixed + pct% of the nominal, raised to
// Min and, when Max is positive, capped at Max.
type Commission struct {
	Fixed float64
	Pct   float64
	Min   float64
	Max   float64
}

// Calculate returns the fee charged on one order of the given nominal.
func (c Commission) Calculate(nominal float64) float64 {
	fee := math.Max(c.Fixed+nominal*c.Pct/100, c.Min)
	if c.Max > 0 {
		fee = math.Min(fee, c.Max)
	}
	return fee
}

// sizingConvergenceRounds bounds the share/commission fixed point search for
// percentage fees.
const sizingConvergenceRounds = 5

// SizingInput carries everything needed to size one position. Price, StopLoss
// and ATR are in the instrument currency; FXRate converts them to the base
// currency.
type SizingInput struct {
	Ticker         string
	Broker         string
	Currency       string
	BaseCurrency   string
	Price          float64
	FXRate         float64
	StopLoss       *float64
	ATR            float64
	ATRMultiplier  float64
	Capital        float64
	MaxRiskPct     float64
	MaxPositionPct float64
	FarStopPct     float64
	Commission     Commission
}

func (in SizingInput) validate() error {
	switch {
	case in.Capital <= 0:
		return fmt.Errorf("%w: capital must be positive, got %v", ErrInvalidSizing, in.Capital)
	case in.Price <= 0 || !isFinite(in.Price):
		return fmt.Errorf("%w: price must be positive, got %v", ErrInvalidSizing, in.Price)
	case in.FXRate <= 0 || !isFinite(in.FXRate):
		return fmt.Errorf("%w: fx rate must be positive, got %v", ErrInvalidSizing, in.FXRate)
	case in.MaxRiskPct <= 0 || in.MaxPositionPct <= 0:
		return fmt.Errorf("%w: risk and position budgets must be positive", ErrInvalidSizing)
	case in.StopLoss == nil && (in.ATR <= 0 || in.ATRMultiplier <= 0):
		return fmt.Errorf("%w: an ATR stop needs a positive ATR and multiplier", ErrInvalidSizing)
	}
	return nil
}

// CalculateSizing sizes a long position so that a fill at the stop, plus the
// buy and sell commissions, costs at most MaxRiskPct of the capital, while the
// nominal stays within MaxPositionPct of it.
func CalculateSizing(in SizingInput) (*dto.SizingResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	price := in.Price * in.FXRate
	res := &dto.SizingResult{
		Ticker:    in.Ticker,
		Broker:    in.Broker,
		Currency:  in.Currency,
		FXRate:    in.FXRate,
		Price:     price,
		Capital:   in.Capital,
		MaxRisk:   in.Capital * in.MaxRiskPct / 100,
		LimitedBy: dto.SizingLimitRisk,
	}

	if in.StopLoss != nil {
		res.StopLoss = *in.StopLoss * in.FXRate
		res.StopType = dto.StopTypeManual
	} else {
		atr := in.ATR * in.FXRate
		res.ATR = &atr
		res.StopLoss = price - in.ATRMultiplier*atr
		res.StopType = dto.StopTypeATR
	}
	res.Distance = price - res.StopLoss
	res.DistancePct = res.Distance / price * 100

	if res.Distance <= 0 {
		res.Warnings = append(res.Warnings, "stop loss must be below the current price")
		return res, nil
	}

	shares := riskBoundShares(res.MaxRisk, res.Distance, price, in.Commission)
	if maxShares := int(math.Floor(in.Capital * in.MaxPositionPct / 100 / price)); shares > maxShares {
		shares = maxShares
		res.LimitedBy = dto.SizingLimitNominal
	}

	nominal := float64(shares) * price
	res.BuyCommission = in.Commission.Calculate(nominal)
	res.SellCommission = in.Commission.Calculate(nominal)
	if shares > 0 {
		res.Shares = shares
		res.Nominal = nominal
		res.PortfolioPct = nominal / in.Capital * 100
		res.ActualRisk = float64(shares)*res.Distance + res.BuyCommission + res.SellCommission
	}

	if in.FarStopPct > 0 && res.DistancePct > in.FarStopPct {
		res.Warnings = append(res.Warnings, fmt.Sprintf("stop is %.1f%% below the price, consider the ATR stop", res.DistancePct))
	}
	if in.BaseCurrency != "" && in.Currency != "" && !strings.EqualFold(in.Currency, in.BaseCurrency) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("price converted from %s (x%.4f)", in.Currency, in.FXRate))
	}
	if shares == 0 {
		res.Warnings = append(res.Warnings, "risk budget too small for this stop distance")
	}
	return res, nil
}

// riskBoundShares is the largest share count whose stop-out loss plus round
// trip commissions fits in maxRisk. Percentage fees depend on the share count,
// so the count is refined until it stops moving.
func riskBoundShares(maxRisk, distance, price float64, c Commission) int {
	if c.Pct == 0 {
		available := math.Max(0, maxRisk-2*c.Calculate(0))
		return int(math.Floor(available / distance))
	}

	shares := int(math.Floor(maxRisk / distance))
	for range sizingConvergenceRounds {
		fee := c.Calculate(float64(shares) * price)
		next := int(math.Floor(math.Max(0, maxRisk-2*fee) / distance))
		if next == shares {
			break
		}
		shares = next
	}
	return shares
}

// AverageTrueRange returns the latest Wilder-smoothed ATR of the series.
func AverageTrueRange(series dto.PriceSeries, period int) (float64, error) {
	if period < 1 {
		return 0, fmt.Errorf("%w: atr period must be positive, got %d", ErrInvalidSizing, period)
	}
	if series.Len() <= period {
		return 0, &DataUnavailableError{
			Ticker: series.Ticker,
			Err:    fmt.Errorf("need more than %d bars for ATR, got %d", period, series.Len()),
		}
	}

	high := make([]float64, series.Len())
	low := make([]float64, series.Len())
	for i, p := range series.Points {
		high[i] = p.High
		low[i] = p.Low
	}

	atr := talib.Atr(high, low, series.Closes(), period)
	last := atr[len(atr)-1]
	if !isFinite(last) || last <= 0 {
		return 0, &DataUnavailableError{Ticker: series.Ticker, Err: fmt.Errorf("flat price history, ATR is %v", last)}
	}
	return last, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
