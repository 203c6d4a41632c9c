package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "Stocks, forex (C:EURUSD) and crypto (X:BTCUSD) aggregates",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Spot klines for crypto trading pairs such as BTCUSDT",
		RequiresAuth: false,
	},
	ProviderParquet: {
		Name:         string(ProviderParquet),
		DisplayName:  "Parquet files",
		Description:  "Local <SYMBOL>.parquet files written by the download command",
		RequiresAuth: false,
	},
}

// GetSupportedProviders returns the supported provider names, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}
