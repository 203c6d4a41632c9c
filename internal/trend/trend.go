// Package trend labels fast/slow EMA ordering, finds crossovers and flags
// pullbacks to the fast EMA.
package trend

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// Setup is a bar flagged as a pullback entry.
type Setup struct {
	Index  int                  `json:"index"`
	Time   time.Time            `json:"time"`
	Signal types.PullbackSignal `json:"signal"`
	Close  float64              `json:"close"`
	Fast   float64              `json:"fast"`
}

// Analysis holds every per-bar label for one series.
type Analysis struct {
	Series   types.Series
	Fast     []float64
	Slow     []float64
	Trend    []types.TrendLabel
	Cross    []types.CrossEvent
	Pullback []types.PullbackSignal
}

// TrendAndCross labels every bar Uptrend when fast > slow and Downtrend
// otherwise, and marks bars where the ordering flipped from the previous bar.
// Bars where either EMA is NaN are Unknown and never cross.
func TrendAndCross(fast, slow []float64) ([]types.TrendLabel, []types.CrossEvent) {
	n := min(len(fast), len(slow))
	trends := make([]types.TrendLabel, n)
	crosses := make([]types.CrossEvent, n)

	for i := 0; i < n; i++ {
		crosses[i] = types.CrossNone

		switch {
		case math.IsNaN(fast[i]) || math.IsNaN(slow[i]):
			trends[i] = types.TrendUnknown
		case fast[i] > slow[i]:
			trends[i] = types.TrendUptrend
		default:
			trends[i] = types.TrendDowntrend
		}

		if i == 0 || math.IsNaN(fast[i-1]) || math.IsNaN(slow[i-1]) {
			continue
		}

		if fast[i-1] < slow[i-1] && fast[i] > slow[i] {
			crosses[i] = types.CrossBullish
		} else if fast[i-1] > slow[i-1] && fast[i] < slow[i] {
			crosses[i] = types.CrossBearish
		}
	}

	return trends, crosses
}

// Pullbacks flags BuySetup on uptrend bars whose low touches the fast EMA and
// SellSetup on downtrend bars whose high touches it. Bar 0 is never flagged.
func Pullbacks(series types.Series, fast []float64, trends []types.TrendLabel) []types.PullbackSignal {
	n := min(series.Len(), len(fast), len(trends))
	out := make([]types.PullbackSignal, n)

	for i := range out {
		out[i] = types.PullbackNone
		if i == 0 || math.IsNaN(fast[i]) {
			continue
		}

		bar := series.Bars[i]

		switch {
		case trends[i] == types.TrendUptrend && bar.Low <= fast[i]:
			out[i] = types.PullbackBuySetup
		case trends[i] == types.TrendDowntrend && bar.High >= fast[i]:
			out[i] = types.PullbackSellSetup
		}
	}

	return out
}

// Analyze computes the fast and slow EMAs of series and labels every bar.
func Analyze(series types.Series, fastWindow, slowWindow int) Analysis {
	closes := series.Closes()
	fast := indicator.CalculateEMA(closes, fastWindow)
	slow := indicator.CalculateEMA(closes, slowWindow)

	return AnalyzeWith(series, fast, slow)
}

// AnalyzeWith labels series using EMAs computed elsewhere. EMA values past
// the end of series are dropped.
func AnalyzeWith(series types.Series, fast, slow []float64) Analysis {
	if n := series.Len(); len(fast) > n || len(slow) > n {
		fast = fast[:min(len(fast), n)]
		slow = slow[:min(len(slow), n)]
	}

	trends, crosses := TrendAndCross(fast, slow)

	return Analysis{
		Series:   series,
		Fast:     fast,
		Slow:     slow,
		Trend:    trends,
		Cross:    crosses,
		Pullback: Pullbacks(series, fast, trends),
	}
}

// Len returns the number of labelled bars.
func (a Analysis) Len() int {
	return len(a.Trend)
}

// LatestTrend returns the trend of the last bar, or Unknown.
func (a Analysis) LatestTrend() types.TrendLabel {
	if len(a.Trend) == 0 {
		return types.TrendUnknown
	}

	return a.Trend[len(a.Trend)-1]
}

// LatestCross returns the cross event on the last bar.
func (a Analysis) LatestCross() types.CrossEvent {
	if len(a.Cross) == 0 {
		return types.CrossNone
	}

	return a.Cross[len(a.Cross)-1]
}

// LastCross returns the most recent bar with a cross, if any.
func (a Analysis) LastCross() (types.CrossEvent, time.Time, bool) {
	for i := len(a.Cross) - 1; i >= 0; i-- {
		if a.Cross[i] != types.CrossNone {
			return a.Cross[i], a.Series.Bars[i].Time, true
		}
	}

	return types.CrossNone, time.Time{}, false
}

// Setups returns up to n of the most recent pullback setups, oldest first.
func (a Analysis) Setups(n int) []Setup {
	var out []Setup

	for i := len(a.Pullback) - 1; i >= 0 && len(out) < n; i-- {
		if a.Pullback[i] == types.PullbackNone {
			continue
		}

		out = append(out, a.setupAt(i))
	}

	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}

	return out
}

// LatestSetup returns the most recent pullback setup anywhere in the series.
func (a Analysis) LatestSetup() (Setup, bool) {
	setups := a.Setups(1)
	if len(setups) == 0 {
		return Setup{}, false
	}

	return setups[0], true
}

// TrendAt returns the trend label of bar i, or Unknown when i is out of range.
func (a Analysis) TrendAt(i int) types.TrendLabel {
	if i < 0 || i >= len(a.Trend) {
		return types.TrendUnknown
	}

	return a.Trend[i]
}

func (a Analysis) setupAt(i int) Setup {
	bar := a.Series.Bars[i]

	return Setup{
		Index:  i,
		Time:   bar.Time,
		Signal: a.Pullback[i],
		Close:  bar.Close,
		Fast:   a.Fast[i],
	}
}
