package marketdata

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata/provider"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
	ProviderParquet = provider.ProviderParquet
)

// Loader fetches the recent history of one symbol.
type Loader interface {
	// Fetch returns the bars of symbol sampled at interval over the trailing
	// period. An unknown symbol or a window without data yields an empty
	// series and no error.
	Fetch(ctx context.Context, symbol string, interval Interval, period Period) (types.Series, error)
}

// LoaderConfig holds the provider settings.
type LoaderConfig struct {
	PolygonAPIKey  string `validate:"required_if=ProviderType polygon"`
	PolygonBaseURL string `validate:"omitempty,url"`
	BinanceBaseURL string `validate:"omitempty,url"`
	ParquetDir     string `validate:"required_if=ProviderType parquet"`

	ProviderType ProviderType `validate:"required,oneof=polygon binance parquet"`
}

// ProviderLoader adapts a provider to the Loader interface.
type ProviderLoader struct {
	provider provider.Provider
	now      func() time.Time
}

// NewLoader creates a loader for providerType.
func NewLoader(providerType ProviderType, config LoaderConfig) (*ProviderLoader, error) {
	config.ProviderType = providerType

	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid loader configuration", err)
	}

	var (
		p   provider.Provider
		err error
	)

	switch providerType {
	case ProviderPolygon:
		p, err = provider.NewPolygonClient(config.PolygonAPIKey, config.PolygonBaseURL)
	case ProviderBinance:
		p, err = provider.NewBinanceClient(config.BinanceBaseURL)
	case ProviderParquet:
		p, err = provider.NewParquetClient(config.ParquetDir)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider type: %s", providerType)
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidProvider, err, "failed to create %s provider", providerType)
	}

	return NewLoaderWithProvider(p), nil
}

// NewLoaderWithProvider creates a loader on top of p.
func NewLoaderWithProvider(p provider.Provider) *ProviderLoader {
	return &ProviderLoader{provider: p, now: time.Now}
}

// Fetch implements Loader.
func (l *ProviderLoader) Fetch(ctx context.Context, symbol string, interval Interval, period Period) (types.Series, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return types.Series{}, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if period.IsZero() {
		return types.Series{}, errors.New(errors.ErrCodeInvalidPeriod, "period is required")
	}

	if _, err := ParseInterval(string(interval)); err != nil {
		return types.Series{}, err
	}

	end := l.now().UTC()
	start := period.Start(end)
	multiplier, timespan := interval.PolygonTimespan()

	bars, err := l.provider.Fetch(ctx, symbol, start, end, multiplier, timespan)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed) {
			return types.Series{}, err
		}

		return types.Series{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", symbol)
	}

	return types.Series{
		Symbol:   symbol,
		Interval: string(interval),
		Bars:     bars,
	}, nil
}

// Close releases the provider when it holds resources.
func (l *ProviderLoader) Close() error {
	if closer, ok := l.provider.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
