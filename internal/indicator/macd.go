package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator. It
// fills both the MACD line and its signal line.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the standard 12/26/9 spans.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   MACDStandard.Fast,
		slowPeriod:   MACDStandard.Slow,
		signalPeriod: MACDStandard.Signal,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// Outputs implements Indicator.
func (m *MACD) Outputs() []types.IndicatorType {
	return []types.IndicatorType{types.IndicatorTypeMACD, types.IndicatorTypeMACDSignal}
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fastPeriod, err := positivePeriod(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slowPeriod, err := positivePeriod(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	signalPeriod, err := positivePeriod(params, 2, "signalPeriod")
	if err != nil {
		return err
	}

	if fastPeriod >= slowPeriod {
		return errors.Newf(errors.ErrCodeInvalidParameter, "fastPeriod (%d) must be less than slowPeriod (%d)", fastPeriod, slowPeriod)
	}

	m.fastPeriod = fastPeriod
	m.slowPeriod = slowPeriod
	m.signalPeriod = signalPeriod

	return nil
}

// Calculate implements Indicator.
func (m *MACD) Calculate(series types.Series) (map[types.IndicatorType][]float64, error) {
	macd, signal := CalculateMACD(series.Closes(), MACDConfig{
		Fast:   m.fastPeriod,
		Slow:   m.slowPeriod,
		Signal: m.signalPeriod,
	})

	return map[types.IndicatorType][]float64{
		types.IndicatorTypeMACD:       macd,
		types.IndicatorTypeMACDSignal: signal,
	}, nil
}

// CalculateMACD returns EMA(fast) - EMA(slow) of closes and the EMA(signal)
// of that line. Both are defined from bar 0.
func CalculateMACD(closes []float64, cfg MACDConfig) (macd, signal []float64) {
	fast := CalculateEMA(closes, cfg.Fast)
	slow := CalculateEMA(closes, cfg.Slow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}

	return macd, CalculateEMA(macd, cfg.Signal)
}
