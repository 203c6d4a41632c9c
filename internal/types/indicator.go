package types

import (
	"math"
	"strings"
	"time"
)

// IndicatorType names one derived column. The set is closed.
type IndicatorType string

const (
	IndicatorTypeEMA8       IndicatorType = "EMA8"
	IndicatorTypeEMA21      IndicatorType = "EMA21"
	IndicatorTypeEMA50      IndicatorType = "EMA50"
	IndicatorTypeEMA200     IndicatorType = "EMA200"
	IndicatorTypeRSI        IndicatorType = "RSI"
	IndicatorTypeATR        IndicatorType = "ATR"
	IndicatorTypeMACD       IndicatorType = "MACD"
	IndicatorTypeMACDSignal IndicatorType = "MACDSignal"
)

// AllIndicatorTypes returns every indicator in display order.
func AllIndicatorTypes() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeEMA8,
		IndicatorTypeEMA21,
		IndicatorTypeEMA50,
		IndicatorTypeEMA200,
		IndicatorTypeMACD,
		IndicatorTypeMACDSignal,
		IndicatorTypeRSI,
		IndicatorTypeATR,
	}
}

// EMAWindow returns the window of an EMA indicator, or 0 for anything else.
func (t IndicatorType) EMAWindow() int {
	switch t {
	case IndicatorTypeEMA8:
		return 8
	case IndicatorTypeEMA21:
		return 21
	case IndicatorTypeEMA50:
		return 50
	case IndicatorTypeEMA200:
		return 200
	default:
		return 0
	}
}

// ParseIndicatorType resolves a name case-insensitively. "Signal" is accepted
// as the older spelling of MACDSignal.
func ParseIndicatorType(name string) (IndicatorType, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "signal") {
		return IndicatorTypeMACDSignal, true
	}

	for _, t := range AllIndicatorTypes() {
		if strings.EqualFold(name, string(t)) {
			return t, true
		}
	}

	return "", false
}

// ParseIndicatorTypes resolves names, dropping unknown ones and duplicates.
func ParseIndicatorTypes(names []string) []IndicatorType {
	out := make([]IndicatorType, 0, len(names))
	seen := make(map[IndicatorType]bool, len(names))

	for _, name := range names {
		t, ok := ParseIndicatorType(name)
		if !ok || seen[t] {
			continue
		}

		seen[t] = true

		out = append(out, t)
	}

	return out
}

// IndicatorSet holds indicator columns aligned to a series. Missing or
// not-yet-defined values are NaN.
type IndicatorSet struct {
	length  int
	columns map[IndicatorType][]float64
}

// NewIndicatorSet creates an empty set for a series of the given length.
func NewIndicatorSet(length int) IndicatorSet {
	return IndicatorSet{
		length:  length,
		columns: make(map[IndicatorType][]float64),
	}
}

// With returns a copy of the set with column t set to values. Values of the
// wrong length are ignored.
func (s IndicatorSet) With(t IndicatorType, values []float64) IndicatorSet {
	if len(values) != s.length {
		return s
	}

	columns := make(map[IndicatorType][]float64, len(s.columns)+1)
	for k, v := range s.columns {
		columns[k] = v
	}

	column := make([]float64, len(values))
	copy(column, values)
	columns[t] = column

	return IndicatorSet{length: s.length, columns: columns}
}

// Len returns the series length the set is aligned to.
func (s IndicatorSet) Len() int {
	return s.length
}

// Has reports whether column t was computed.
func (s IndicatorSet) Has(t IndicatorType) bool {
	_, ok := s.columns[t]

	return ok
}

// Get returns a copy of column t.
func (s IndicatorSet) Get(t IndicatorType) ([]float64, bool) {
	column, ok := s.columns[t]
	if !ok {
		return nil, false
	}

	out := make([]float64, len(column))
	copy(out, column)

	return out, true
}

// At returns the value of column t at bar i, or NaN.
func (s IndicatorSet) At(t IndicatorType, i int) float64 {
	column, ok := s.columns[t]
	if !ok || i < 0 || i >= len(column) {
		return math.NaN()
	}

	return column[i]
}

// Types returns the computed columns in display order.
func (s IndicatorSet) Types() []IndicatorType {
	out := make([]IndicatorType, 0, len(s.columns))
	for _, t := range AllIndicatorTypes() {
		if s.Has(t) {
			out = append(out, t)
		}
	}

	return out
}

// Row captures bar i of series together with every computed indicator value.
func (s IndicatorSet) Row(series Series, i int) Snapshot {
	snapshot := Snapshot{
		Values: make(map[IndicatorType]float64, len(s.columns)),
	}

	if i >= 0 && i < len(series.Bars) {
		bar := series.Bars[i]
		snapshot.Time = bar.Time
		snapshot.Open = bar.Open
		snapshot.High = bar.High
		snapshot.Low = bar.Low
		snapshot.Close = bar.Close
	}

	for t := range s.columns {
		snapshot.Values[t] = s.At(t, i)
	}

	return snapshot
}

// Snapshot is the price and indicator values of a single bar.
type Snapshot struct {
	Time   time.Time                 `json:"time"`
	Open   float64                   `json:"open"`
	High   float64                   `json:"high"`
	Low    float64                   `json:"low"`
	Close  float64                   `json:"close"`
	Values map[IndicatorType]float64 `json:"values"`
}

// Value returns indicator t, or NaN when it is missing.
func (s Snapshot) Value(t IndicatorType) float64 {
	v, ok := s.Values[t]
	if !ok {
		return math.NaN()
	}

	return v
}
