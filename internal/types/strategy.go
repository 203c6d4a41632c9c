package types

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// StrategyName selects a decision table.
type StrategyName string

const (
	StrategyScalping StrategyName = "Scalping"
	StrategySwing    StrategyName = "Swing"
)

// StrategyNames returns the recognised strategies.
func StrategyNames() []StrategyName {
	return []StrategyName{StrategyScalping, StrategySwing}
}

// StrategyConfig is an immutable description of one decision table.
type StrategyConfig struct {
	Name    StrategyName  `validate:"required,oneof=Scalping Swing"`
	FastEMA IndicatorType `validate:"required,oneof=EMA8 EMA21 EMA50 EMA200"`
	SlowEMA IndicatorType `validate:"required,oneof=EMA8 EMA21 EMA50 EMA200,nefield=FastEMA"`
	// RSI must lie strictly inside (RSILower, RSIUpper) for either side to fire.
	RSILower float64 `validate:"gte=0,ltfield=RSIUpper"`
	RSIUpper float64 `validate:"lte=100"`
	// MACDBuyThreshold, when set, additionally requires MACD > threshold for Buy.
	MACDBuyThreshold optional.Option[float64]
	// MACDSellThreshold, when set, additionally requires MACD < threshold for Sell.
	MACDSellThreshold optional.Option[float64]
	// DefaultInterval and DefaultPeriod are the sampling the strategy was tuned on.
	DefaultInterval string
	DefaultPeriod   string
}

// NewStrategyConfig returns the preset for name.
func NewStrategyConfig(name StrategyName) (StrategyConfig, error) {
	switch name {
	case StrategyScalping:
		return StrategyConfig{
			Name:              StrategyScalping,
			FastEMA:           IndicatorTypeEMA8,
			SlowEMA:           IndicatorTypeEMA21,
			RSILower:          40,
			RSIUpper:          60,
			MACDBuyThreshold:  optional.None[float64](),
			MACDSellThreshold: optional.None[float64](),
			DefaultInterval:   "5m",
			DefaultPeriod:     "7d",
		}, nil
	case StrategySwing:
		return StrategyConfig{
			Name:              StrategySwing,
			FastEMA:           IndicatorTypeEMA50,
			SlowEMA:           IndicatorTypeEMA200,
			RSILower:          30,
			RSIUpper:          70,
			MACDBuyThreshold:  optional.None[float64](),
			MACDSellThreshold: optional.None[float64](),
			DefaultInterval:   "1h",
			DefaultPeriod:     "30d",
		}, nil
	default:
		return StrategyConfig{}, errors.Newf(errors.ErrCodeInvalidStrategy, "unknown strategy %q, expected one of %v", name, StrategyNames())
	}
}

// WithMACDThresholds returns a copy with the given optional MACD thresholds.
func (c StrategyConfig) WithMACDThresholds(buy, sell optional.Option[float64]) StrategyConfig {
	c.MACDBuyThreshold = buy
	c.MACDSellThreshold = sell

	return c
}

// RequiredIndicators lists the indicators the decision table reads.
func (c StrategyConfig) RequiredIndicators() []IndicatorType {
	return []IndicatorType{c.FastEMA, c.SlowEMA, IndicatorTypeMACD, IndicatorTypeMACDSignal, IndicatorTypeRSI}
}

// Validate checks field ranges.
func (c StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	if err := validateThreshold("buy", c.MACDBuyThreshold); err != nil {
		return err
	}

	return validateThreshold("sell", c.MACDSellThreshold)
}

func validateThreshold(side string, threshold optional.Option[float64]) error {
	if threshold.IsNone() {
		return nil
	}

	if v := threshold.Unwrap(); math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "MACD %s threshold must be finite, got %v", side, v)
	}

	return nil
}
