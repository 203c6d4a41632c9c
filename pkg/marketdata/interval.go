package marketdata

import (
	"strings"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata/provider"
)

// Interval is the sampling step of a series.
type Interval string

const (
	IntervalOneMinute      Interval = "1m"
	IntervalTwoMinutes     Interval = "2m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalTwoHours       Interval = "2h"
	IntervalFourHours      Interval = "4h"
	IntervalOneDay         Interval = "1d"
	IntervalOneWeek        Interval = "1wk"
	IntervalOneMonth       Interval = "1mo"
)

// Intervals returns every supported interval from shortest to longest.
func Intervals() []Interval {
	return []Interval{
		IntervalOneMinute,
		IntervalTwoMinutes,
		IntervalFiveMinutes,
		IntervalFifteenMinutes,
		IntervalThirtyMinutes,
		IntervalOneHour,
		IntervalTwoHours,
		IntervalFourHours,
		IntervalOneDay,
		IntervalOneWeek,
		IntervalOneMonth,
	}
}

// intervalAliases maps other common spellings onto the canonical names.
var intervalAliases = map[string]Interval{
	"60m": IntervalOneHour,
	"1w":  IntervalOneWeek,
	"1M":  IntervalOneMonth,
}

// ParseInterval resolves s to a supported interval.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if alias, ok := intervalAliases[s]; ok {
		return alias, nil
	}

	for _, i := range Intervals() {
		if string(i) == strings.ToLower(s) {
			return i, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q, expected one of %v", s, Intervals())
}

// Multiplier returns how many Timespan units make up the interval.
func (i Interval) Multiplier() int {
	switch i {
	case IntervalTwoMinutes, IntervalTwoHours:
		return 2
	case IntervalFiveMinutes:
		return 5
	case IntervalFifteenMinutes:
		return 15
	case IntervalThirtyMinutes:
		return 30
	case IntervalFourHours:
		return 4
	default:
		return 1
	}
}

// Timespan returns the aggregate unit of the interval.
func (i Interval) Timespan() models.Timespan {
	switch i {
	case IntervalOneMinute, IntervalTwoMinutes, IntervalFiveMinutes, IntervalFifteenMinutes, IntervalThirtyMinutes:
		return models.Minute
	case IntervalOneHour, IntervalTwoHours, IntervalFourHours:
		return models.Hour
	case IntervalOneWeek:
		return models.Week
	case IntervalOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// PolygonTimespan returns the multiplier and timespan for aggregate requests.
func (i Interval) PolygonTimespan() (int, models.Timespan) {
	return i.Multiplier(), i.Timespan()
}

// Duration returns the nominal length of one bar. A month counts as 30 days.
func (i Interval) Duration() time.Duration {
	unit := 24 * time.Hour

	switch i.Timespan() {
	case models.Minute:
		unit = time.Minute
	case models.Hour:
		unit = time.Hour
	case models.Week:
		unit = 7 * 24 * time.Hour
	case models.Month:
		unit = 30 * 24 * time.Hour
	}

	return time.Duration(i.Multiplier()) * unit
}

// BinanceInterval returns the kline interval name.
func (i Interval) BinanceInterval() (string, error) {
	return provider.ConvertTimespanToBinanceInterval(i.Timespan(), i.Multiplier())
}

// DuckDBInterval returns the interval as a DuckDB INTERVAL literal body.
func (i Interval) DuckDBInterval() string {
	return provider.DuckDBInterval(i.Multiplier(), i.Timespan())
}
