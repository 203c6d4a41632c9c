package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// IndicatorRegistry maps each indicator column to the calculator that fills it.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(output types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(output types.IndicatorType) error
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new, empty indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry registers a calculator for every indicator column,
// configured with cfg.
func NewDefaultRegistry(cfg Config) (IndicatorRegistry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rsi := NewRSI()
	if err := rsi.Config(cfg.RSIPeriod, cfg.RSIMethod); err != nil {
		return nil, err
	}

	atr := NewATR()
	if err := atr.Config(cfg.ATRPeriod); err != nil {
		return nil, err
	}

	macd := NewMACD()
	if err := macd.Config(cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal); err != nil {
		return nil, err
	}

	registry := NewIndicatorRegistry()

	indicators := []Indicator{
		NewEMA(types.IndicatorTypeEMA8),
		NewEMA(types.IndicatorTypeEMA21),
		NewEMA(types.IndicatorTypeEMA50),
		NewEMA(types.IndicatorTypeEMA200),
		rsi,
		atr,
		macd,
	}

	for _, ind := range indicators {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterIndicator adds an indicator under every column it outputs.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	outputs := indicator.Outputs()
	if len(outputs) == 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "RegisterIndicator: indicator %s has no outputs", indicator.Name())
	}

	for _, output := range outputs {
		if _, exists := r.indicators[output]; exists {
			return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator for %s already registered", output)
		}
	}

	for _, output := range outputs {
		r.indicators[output] = indicator
	}

	return nil
}

// GetIndicator retrieves the indicator filling output.
func (r *IndicatorRegistryV1) GetIndicator(output types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[output]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetIndicator: indicator for %s not found", output)
	}

	return indicator, nil
}

// ListIndicators returns the registered columns in display order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for _, t := range types.AllIndicatorTypes() {
		if _, ok := r.indicators[t]; ok {
			names = append(names, t)
		}
	}

	return names
}

// RemoveIndicator removes the indicator filling output, together with every
// other column it fills.
func (r *IndicatorRegistryV1) RemoveIndicator(output types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	indicator, exists := r.indicators[output]
	if !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator for %s not found", output)
	}

	for _, t := range indicator.Outputs() {
		delete(r.indicators, t)
	}

	return nil
}
