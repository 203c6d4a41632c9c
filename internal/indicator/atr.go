package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// ATR represents the Average True Range indicator.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with the default 14-bar window.
func NewATR() Indicator {
	return &ATR{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

// Outputs implements Indicator.
func (a *ATR) Outputs() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeATR}
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := positivePeriod(params, 0, "period")
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// Calculate implements Indicator.
func (a *ATR) Calculate(series types.Series) (map[types.IndicatorType][]float64, error) {
	return map[types.IndicatorType][]float64{
		types.IndicatorTypeATR: CalculateATR(series.Highs(), series.Lows(), series.Closes(), a.period),
	}, nil
}

// CalculateTrueRange returns max(H-L, |H-prevC|, |L-prevC|) per bar. Bar 0
// has no previous close and uses H-L.
func CalculateTrueRange(highs, lows, closes []float64) []float64 {
	n := min(len(highs), len(lows), len(closes))
	out := make([]float64, n)

	for i := 0; i < n; i++ {
		tr := highs[i] - lows[i]
		if i > 0 {
			tr = math.Max(tr, math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		}

		out[i] = tr
	}

	return out
}

// CalculateATR returns the simple rolling mean of the true range over period
// bars. The first period-1 bars are NaN.
func CalculateATR(highs, lows, closes []float64, period int) []float64 {
	tr := CalculateTrueRange(highs, lows, closes)
	out := nanSlice(len(tr))

	if period <= 0 {
		return out
	}

	sum := 0.0
	for i, v := range tr {
		sum += v
		if i >= period {
			sum -= tr[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out
}
