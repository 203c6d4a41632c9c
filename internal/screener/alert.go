package screener

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-screener/internal/signal"
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// FormatAlert builds the Markdown chat message for an actionable signal:
//
//	*Buy* `AAPL`
//	Strategy: Scalping
//	MACD: 0.42 | Signal: 0.31
//	RSI: 52.10 (Rising)
//	EMA8: 189.20 | EMA21: 188.75
//	ATR: 0.8120
//	High: 189.90 | Low: 188.40
func FormatAlert(symbol string, cfg types.StrategyConfig, c signal.Classification, extras types.RowExtras) string {
	snap := c.Snapshot

	trend := string(c.RSITrend)
	if trend == "" {
		trend = "n/a"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "*%s* `%s`\n", c.Signal, symbol)
	fmt.Fprintf(&b, "Strategy: %s\n", cfg.Name)
	fmt.Fprintf(&b, "MACD: %.2f | Signal: %.2f\n", snap.Value(types.IndicatorTypeMACD), snap.Value(types.IndicatorTypeMACDSignal))
	fmt.Fprintf(&b, "RSI: %.2f (%s)\n", snap.Value(types.IndicatorTypeRSI), trend)
	fmt.Fprintf(&b, "%s: %.2f | %s: %.2f\n", cfg.FastEMA, snap.Value(cfg.FastEMA), cfg.SlowEMA, snap.Value(cfg.SlowEMA))
	fmt.Fprintf(&b, "ATR: %.4f\n", snap.Value(types.IndicatorTypeATR))
	fmt.Fprintf(&b, "High: %.2f | Low: %.2f", extras.PrevHigh, extras.PrevLow)

	return b.String()
}
