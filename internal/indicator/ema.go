package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// EMA fills one of the EMA columns with an exponential moving average of Close.
type EMA struct {
	output types.IndicatorType
	period int
}

// NewEMA creates the EMA for column t, using the window the column is named after.
func NewEMA(t types.IndicatorType) Indicator {
	return &EMA{
		output: t,
		period: t.EMAWindow(),
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// Outputs returns the single column this EMA fills.
func (e *EMA) Outputs() []types.IndicatorType {
	return []types.IndicatorType{e.output}
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := positivePeriod(params, 0, "period")
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Calculate implements Indicator.
func (e *EMA) Calculate(series types.Series) (map[types.IndicatorType][]float64, error) {
	if e.period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "EMA period must be positive, got %d", e.period)
	}

	return map[types.IndicatorType][]float64{
		e.output: CalculateEMA(series.Closes(), e.period),
	}, nil
}

// CalculateEMA returns the exponential moving average of values with
// smoothing factor 2/(period+1), seeded by the first value:
//
//	EMA[0] = v[0]
//	EMA[i] = alpha*v[i] + (1-alpha)*EMA[i-1]
//
// Every bar has a value; early values lean on the short history.
func CalculateEMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	if period <= 0 {
		return nanSlice(len(values))
	}

	alpha := 2.0 / float64(period+1)

	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}
