package indicator

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Indicator computes one or more aligned columns over a series.
type Indicator interface {
	// Name returns a human readable name of the indicator
	Name() string
	// Outputs returns the columns this indicator fills
	Outputs() []types.IndicatorType
	// Calculate computes every output column over the whole series
	Calculate(series types.Series) (map[types.IndicatorType][]float64, error)
	// Config reconfigures the indicator's windows
	Config(params ...any) error
}

// RSIMethod selects how gains and losses are averaged.
type RSIMethod string

const (
	// RSIMethodSimple uses plain rolling means of gains and losses.
	RSIMethodSimple RSIMethod = "simple"
	// RSIMethodWilder uses Wilder's recursive smoothing.
	RSIMethodWilder RSIMethod = "wilder"
)

// MACDConfig holds the EMA spans of a MACD variant.
type MACDConfig struct {
	Fast   int `yaml:"fast" json:"fast" validate:"required,min=1"`
	Slow   int `yaml:"slow" json:"slow" validate:"required,gtfield=Fast"`
	Signal int `yaml:"signal" json:"signal" validate:"required,min=1"`
}

var (
	// MACDStandard is the common 12/26/9 MACD.
	MACDStandard = MACDConfig{Fast: 12, Slow: 26, Signal: 9}
	// MACDLong is the slower 24/60/18 MACD.
	MACDLong = MACDConfig{Fast: 24, Slow: 60, Signal: 18}
)

// Config holds the windows used by the engine.
type Config struct {
	MACD      MACDConfig `yaml:"macd" json:"macd"`
	RSIMethod RSIMethod  `yaml:"rsi_method" json:"rsi_method" validate:"required,oneof=simple wilder"`
	RSIPeriod int        `yaml:"rsi_period" json:"rsi_period" validate:"required,min=2"`
	ATRPeriod int        `yaml:"atr_period" json:"atr_period" validate:"required,min=1"`
}

// DefaultConfig returns standard MACD, simple 14-bar RSI and 14-bar ATR.
func DefaultConfig() Config {
	return Config{
		MACD:      MACDStandard,
		RSIMethod: RSIMethodSimple,
		RSIPeriod: 14,
		ATRPeriod: 14,
	}
}

// Validate checks every window.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid indicator config", err)
	}

	return nil
}

// MinBars returns the shortest series whose last bar has a defined RSI and ATR.
func (c Config) MinBars() int {
	rsi := c.RSIPeriod
	if c.RSIMethod == RSIMethodWilder {
		rsi++
	}

	return max(rsi, c.ATRPeriod)
}

// nanSlice returns n NaNs.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

func positivePeriod(params []any, index int, name string) (int, error) {
	period, ok := params[index].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}
