package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
	method RSIMethod
}

// NewRSI creates a 14-bar RSI using simple rolling means.
func NewRSI() Indicator {
	return &RSI{
		period: 14,
		method: RSIMethodSimple,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d,%s)", r.period, r.method)
}

// Outputs implements Indicator.
func (r *RSI) Outputs() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeRSI}
}

// Config configures the RSI indicator. Expected parameters: period (int) and
// optionally method (RSIMethod).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 || len(params) > 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 or 2 parameters: period (int), method (RSIMethod)")
	}

	period, err := positivePeriod(params, 0, "period")
	if err != nil {
		return err
	}

	if period < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least 2, got %d", period)
	}

	method := r.method

	if len(params) == 2 {
		m, ok := params[1].(RSIMethod)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for method parameter, expected RSIMethod")
		}

		if m != RSIMethodSimple && m != RSIMethodWilder {
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown RSI method %q", m)
		}

		method = m
	}

	r.period = period
	r.method = method

	return nil
}

// Calculate implements Indicator.
func (r *RSI) Calculate(series types.Series) (map[types.IndicatorType][]float64, error) {
	closes := series.Closes()

	var values []float64

	switch r.method {
	case RSIMethodWilder:
		values = CalculateWilderRSI(closes, r.period)
	default:
		values = CalculateRSI(closes, r.period)
	}

	return map[types.IndicatorType][]float64{
		types.IndicatorTypeRSI: values,
	}, nil
}

// priceChanges splits close-to-close changes into gains and losses. Bar 0
// has no previous close and contributes a zero change.
func priceChanges(closes []float64) (gains, losses []float64) {
	gains = make([]float64, len(closes))
	losses = make([]float64, len(closes))

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	return gains, losses
}

// rsiFromAverages turns average gain and loss into an RSI value. A window
// without losses saturates at 100.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}

	if avgLoss == 0 {
		return 100
	}

	rsi := 100 - 100/(1+avgGain/avgLoss)

	return math.Max(0, math.Min(100, rsi))
}

// CalculateRSI computes RSI with simple rolling means of gains and losses over
// period bars. The first period-1 bars are NaN.
func CalculateRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 {
		return out
	}

	gains, losses := priceChanges(closes)

	for i := period - 1; i < len(closes); i++ {
		sumGain, sumLoss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}

		out[i] = rsiFromAverages(sumGain/float64(period), sumLoss/float64(period))
	}

	return out
}

// CalculateWilderRSI computes RSI with Wilder's smoothing: the first average
// is the mean of the first period changes, then
// avg = (avg*(period-1) + current) / period. The first period bars are NaN.
func CalculateWilderRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains, losses := priceChanges(closes)

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}
