package screener

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/signal"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAlert(t *testing.T) {
	cfg, err := types.NewStrategyConfig(types.StrategySwing)
	require.NoError(t, err)

	c := signal.Classification{
		Signal: types.TradeSignalSell,
		Snapshot: types.Snapshot{
			Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Values: map[types.IndicatorType]float64{
				types.IndicatorTypeMACD:       -0.4213,
				types.IndicatorTypeMACDSignal: -0.3102,
				types.IndicatorTypeRSI:        44.129,
				types.IndicatorTypeEMA50:      101.234,
				types.IndicatorTypeEMA200:     104.5,
				types.IndicatorTypeATR:        0.81234,
			},
		},
		RSITrend: types.RSIFalling,
	}

	got := FormatAlert("MSFT", cfg, c, types.RowExtras{PrevHigh: 102.9, PrevLow: 100.4})

	want := "*Sell* `MSFT`\n" +
		"Strategy: Swing\n" +
		"MACD: -0.42 | Signal: -0.31\n" +
		"RSI: 44.13 (Falling)\n" +
		"EMA50: 101.23 | EMA200: 104.50\n" +
		"ATR: 0.8123\n" +
		"High: 102.90 | Low: 100.40"
	assert.Equal(t, want, got)
}

func TestFormatAlertWithoutRSITrend(t *testing.T) {
	cfg, err := types.NewStrategyConfig(types.StrategyScalping)
	require.NoError(t, err)

	got := FormatAlert("AAPL", cfg, signal.Classification{Signal: types.TradeSignalBuy}, types.RowExtras{})

	assert.Contains(t, got, "*Buy* `AAPL`")
	assert.Contains(t, got, "(n/a)")
	assert.Contains(t, got, "EMA8:")
	assert.Contains(t, got, "EMA21:")
}
