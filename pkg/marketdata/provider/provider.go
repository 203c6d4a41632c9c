package provider

import (
	"context"
	"sort"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderParquet ProviderType = "parquet"
)

// Provider fetches bars for one ticker.
type Provider interface {
	// Fetch returns the bars of ticker between start and end, sampled at
	// multiplier x timespan, oldest first. An unknown ticker or an empty
	// window yields no bars and no error.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 5, models.Minute)
	Fetch(ctx context.Context, ticker string, start time.Time, end time.Time, multiplier int, timespan models.Timespan) ([]types.Bar, error)
}

// normalizeBars sorts bars by time and keeps the last of any duplicates.
func normalizeBars(bars []types.Bar) []types.Bar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Time.Equal(b.Time) {
			out[len(out)-1] = b

			continue
		}

		out = append(out, b)
	}

	return out
}
