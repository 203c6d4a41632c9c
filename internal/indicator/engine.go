package indicator

import (
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Engine computes indicator sets from a registry. It holds no per-series
// state and is safe for concurrent use.
type Engine struct {
	registry IndicatorRegistry
}

// NewEngine creates an engine backed by the default registry for cfg.
func NewEngine(cfg Config) (*Engine, error) {
	registry, err := NewDefaultRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{registry: registry}, nil
}

// NewEngineWithRegistry creates an engine backed by registry.
func NewEngineWithRegistry(registry IndicatorRegistry) *Engine {
	return &Engine{registry: registry}
}

// Compute returns the requested columns over series. Types without a
// registered calculator are skipped. A calculator that fills several columns
// runs once, and only the requested ones are kept.
func (e *Engine) Compute(series types.Series, requested []types.IndicatorType) (types.IndicatorSet, error) {
	set := types.NewIndicatorSet(series.Len())
	done := make(map[Indicator]map[types.IndicatorType][]float64)

	for _, t := range requested {
		if set.Has(t) {
			continue
		}

		ind, err := e.registry.GetIndicator(t)
		if err != nil {
			continue
		}

		columns, ok := done[ind]
		if !ok {
			columns, err = ind.Calculate(series)
			if err != nil {
				return types.IndicatorSet{}, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate %s for %s", ind.Name(), series.Symbol)
			}

			done[ind] = columns
		}

		values, ok := columns[t]
		if !ok || len(values) != series.Len() {
			return types.IndicatorSet{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s returned no aligned %s column", ind.Name(), t)
		}

		set = set.With(t, values)
	}

	return set, nil
}

// Compute builds an engine for cfg and computes the requested columns.
func Compute(series types.Series, requested []types.IndicatorType, cfg Config) (types.IndicatorSet, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return types.IndicatorSet{}, err
	}

	return engine.Compute(series, requested)
}
