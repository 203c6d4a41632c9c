package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// Bar is one sampled OHLC record.
type Bar struct {
	Time   time.Time `json:"time" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}

// Series is an ordered run of bars for one symbol at one interval.
// An empty Series is a valid value and means the loader found nothing.
type Series struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Bars     []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// IsEmpty reports whether the series has no bars.
func (s Series) IsEmpty() bool {
	return len(s.Bars) == 0
}

// Closes returns the close prices in bar order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}

	return out
}

// Highs returns the high prices in bar order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}

	return out
}

// Lows returns the low prices in bar order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}

	return out
}

// Last returns a copy of the series holding only its final n bars.
func (s Series) Last(n int) Series {
	if n < 0 {
		n = 0
	}

	start := len(s.Bars) - n
	if start < 0 {
		start = 0
	}

	bars := make([]Bar, len(s.Bars)-start)
	copy(bars, s.Bars[start:])

	return Series{Symbol: s.Symbol, Interval: s.Interval, Bars: bars}
}

// Validate checks that timestamps strictly increase and that every bar is a
// well-formed OHLC record: finite prices with Low <= Open, Close <= High.
func (s Series) Validate() error {
	for i, b := range s.Bars {
		if !isFinite(b.Open) || !isFinite(b.High) || !isFinite(b.Low) || !isFinite(b.Close) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "%s: bar %d at %s has a non-finite price", s.Symbol, i, b.Time.Format(time.RFC3339))
		}

		if b.Low > math.Min(b.Open, b.Close) || b.High < math.Max(b.Open, b.Close) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "%s: bar %d at %s violates low <= open,close <= high", s.Symbol, i, b.Time.Format(time.RFC3339))
		}

		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "%s: bar %d at %s is not after the previous bar", s.Symbol, i, b.Time.Format(time.RFC3339))
		}
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
