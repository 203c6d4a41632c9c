// Package signal turns the latest indicator values of a series into a
// Buy/Sell/NoSetup decision for one of the strategy decision tables.
package signal

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// MinBars is the shortest series the classifier will look at.
const MinBars = 20

// Classification is the outcome of running a decision table on one bar.
type Classification struct {
	Signal   types.TradeSignal `json:"signal"`
	Snapshot types.Snapshot    `json:"snapshot"`
	// RSITrend is empty when the previous bar has no RSI.
	RSITrend types.RSITrend `json:"rsi_trend,omitempty"`
	Reason   string         `json:"reason"`
}

// Classify evaluates cfg's decision table on latest. previous only feeds the
// RSI trend and may be the zero Snapshot.
func Classify(latest, previous types.Snapshot, cfg types.StrategyConfig) (Classification, error) {
	result := Classification{Snapshot: latest}

	if cfg.Name != types.StrategyScalping && cfg.Name != types.StrategySwing {
		result.Signal = types.TradeSignalInvalidStrategy
		result.Reason = fmt.Sprintf("unknown strategy %q", cfg.Name)

		return result, errors.Newf(errors.ErrCodeInvalidStrategy, "unknown strategy %q", cfg.Name)
	}

	if err := cfg.Validate(); err != nil {
		result.Signal = types.TradeSignalInvalidStrategy
		result.Reason = err.Error()

		return result, err
	}

	for _, t := range cfg.RequiredIndicators() {
		v := latest.Value(t)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			result.Signal = types.TradeSignalError
			result.Reason = fmt.Sprintf("%s is not a finite number", t)

			return result, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s is %v at %s", t, v, latest.Time.Format("2006-01-02 15:04"))
		}
	}

	fast := latest.Value(cfg.FastEMA)
	slow := latest.Value(cfg.SlowEMA)
	macd := latest.Value(types.IndicatorTypeMACD)
	macdSignal := latest.Value(types.IndicatorTypeMACDSignal)
	rsi := latest.Value(types.IndicatorTypeRSI)

	result.RSITrend = rsiTrend(rsi, previous.Value(types.IndicatorTypeRSI))

	rsiInside := cfg.RSILower < rsi && rsi < cfg.RSIUpper

	buy := fast > slow && macd > macdSignal && rsiInside
	if cfg.MACDBuyThreshold.IsSome() {
		buy = buy && macd > cfg.MACDBuyThreshold.Unwrap()
	}

	sell := fast < slow && macd < macdSignal && rsiInside
	if cfg.MACDSellThreshold.IsSome() {
		sell = sell && macd < cfg.MACDSellThreshold.Unwrap()
	}

	switch {
	case buy:
		result.Signal = types.TradeSignalBuy
		result.Reason = fmt.Sprintf("%s %.4f > %s %.4f, MACD %.4f > signal %.4f, RSI %.2f inside (%.0f, %.0f)",
			cfg.FastEMA, fast, cfg.SlowEMA, slow, macd, macdSignal, rsi, cfg.RSILower, cfg.RSIUpper)
	case sell:
		result.Signal = types.TradeSignalSell
		result.Reason = fmt.Sprintf("%s %.4f < %s %.4f, MACD %.4f < signal %.4f, RSI %.2f inside (%.0f, %.0f)",
			cfg.FastEMA, fast, cfg.SlowEMA, slow, macd, macdSignal, rsi, cfg.RSILower, cfg.RSIUpper)
	default:
		result.Signal = types.TradeSignalNoSetup
		result.Reason = "no setup"

		if !rsiInside {
			result.Reason = fmt.Sprintf("RSI %.2f outside (%.0f, %.0f)", rsi, cfg.RSILower, cfg.RSIUpper)
		}
	}

	return result, nil
}

// ClassifySeries classifies the last bar of series. Series shorter than
// MinBars yield NoData without any comparison.
func ClassifySeries(series types.Series, set types.IndicatorSet, cfg types.StrategyConfig) (Classification, error) {
	n := series.Len()

	if n == 0 {
		return Classification{Signal: types.TradeSignalNoData, Reason: "no data"},
			errors.Newf(errors.ErrCodeNoDataFound, "no bars for %s", series.Symbol)
	}

	if n < MinBars {
		return Classification{Signal: types.TradeSignalNoData, Reason: "insufficient history"},
			errors.NewInsufficientDataErrorf(MinBars, n, series.Symbol, "%s has %d bars, need at least %d", series.Symbol, n, MinBars)
	}

	if set.Len() != n {
		return Classification{Signal: types.TradeSignalError},
			errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator set has %d rows, series has %d", set.Len(), n)
	}

	return Classify(set.Row(series, n-1), set.Row(series, n-2), cfg)
}

func rsiTrend(current, previous float64) types.RSITrend {
	if math.IsNaN(previous) {
		return ""
	}

	if current > previous {
		return types.RSIRising
	}

	return types.RSIFalling
}
