package types

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of decimal places kept in result rows.
const DisplayPrecision = 4

// RSITrend tells whether RSI rose into the latest bar.
type RSITrend string

const (
	RSIRising  RSITrend = "Rising"
	RSIFalling RSITrend = "Falling"
)

// RowExtras are the context columns shown next to a signal.
type RowExtras struct {
	RSITrend      RSITrend `json:"rsi_trend,omitempty" yaml:"rsi_trend,omitempty"`
	FastAboveSlow bool     `json:"fast_above_slow" yaml:"fast_above_slow"`
	PrevHigh      float64  `json:"prev_high" yaml:"prev_high"`
	PrevLow       float64  `json:"prev_low" yaml:"prev_low"`
	WeekHigh      float64  `json:"week_high" yaml:"week_high"`
	WeekLow       float64  `json:"week_low" yaml:"week_low"`
}

// Row is the outcome for one symbol. A batch always yields one Row per
// requested symbol, failures included.
type Row struct {
	Symbol    string                    `json:"symbol" yaml:"symbol"`
	Signal    TradeSignal               `json:"signal" yaml:"signal"`
	ErrorKind ErrorKind                 `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Values    map[IndicatorType]float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Trend     TrendLabel                `json:"trend,omitempty" yaml:"trend,omitempty"`
	Cross     CrossEvent                `json:"cross,omitempty" yaml:"cross,omitempty"`
	Extras    RowExtras                 `json:"extras" yaml:"extras"`
	Alerted   bool                      `json:"alerted" yaml:"alerted"`
	BarTime   time.Time                 `json:"bar_time,omitempty" yaml:"bar_time,omitempty"`
}

// NewErrorRow builds the row for a symbol that failed with err.
func NewErrorRow(symbol string, err error) Row {
	kind := ErrorKindFromError(err)
	row := Row{
		Symbol:    symbol,
		Signal:    kind.Signal(),
		ErrorKind: kind,
	}

	if err != nil {
		row.Error = err.Error()
	}

	return row
}

// Failed reports whether the row carries an error kind.
func (r Row) Failed() bool {
	return r.ErrorKind != ErrorKindNone
}

// Round rounds v to DisplayPrecision places. NaN and infinities pass through.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	rounded, _ := decimal.NewFromFloat(v).Round(DisplayPrecision).Float64()

	return rounded
}

// Report is the result of one screener run.
type Report struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Strategy   StrategyName    `json:"strategy" yaml:"strategy"`
	Interval   string          `json:"interval" yaml:"interval"`
	Period     string          `json:"period" yaml:"period"`
	Indicators []IndicatorType `json:"indicators" yaml:"indicators"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Rows       []Row           `json:"rows" yaml:"rows"`
	// Series and Indicators per symbol are kept for charting.
	Series        map[string]Series       `json:"-" yaml:"-"`
	IndicatorSets map[string]IndicatorSet `json:"-" yaml:"-"`
}

// Counts returns how many rows ended with each signal.
func (r *Report) Counts() map[TradeSignal]int {
	counts := make(map[TradeSignal]int)
	for _, row := range r.Rows {
		counts[row.Signal]++
	}

	return counts
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
