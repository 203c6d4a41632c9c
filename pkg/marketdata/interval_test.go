package marketdata

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IntervalTestSuite struct {
	suite.Suite
}

func TestIntervalSuite(t *testing.T) {
	suite.Run(t, new(IntervalTestSuite))
}

func (suite *IntervalTestSuite) TestParseInterval() {
	tests := []struct {
		input    string
		expected Interval
	}{
		{"5m", IntervalFiveMinutes},
		{" 15M ", IntervalFifteenMinutes},
		{"1h", IntervalOneHour},
		{"60m", IntervalOneHour},
		{"1d", IntervalOneDay},
		{"1w", IntervalOneWeek},
		{"1wk", IntervalOneWeek},
		{"1M", IntervalOneMonth},
		{"1mo", IntervalOneMonth},
	}

	for _, tt := range tests {
		suite.Run(tt.input, func() {
			got, err := ParseInterval(tt.input)
			suite.NoError(err)
			suite.Equal(tt.expected, got)
		})
	}

	_, err := ParseInterval("7m")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))
}

func (suite *IntervalTestSuite) TestTimespanAndDuration() {
	tests := []struct {
		interval   Interval
		multiplier int
		timespan   models.Timespan
		duration   time.Duration
		duckdb     string
	}{
		{IntervalOneMinute, 1, models.Minute, time.Minute, "1 minutes"},
		{IntervalFiveMinutes, 5, models.Minute, 5 * time.Minute, "5 minutes"},
		{IntervalTwoHours, 2, models.Hour, 2 * time.Hour, "2 hours"},
		{IntervalFourHours, 4, models.Hour, 4 * time.Hour, "4 hours"},
		{IntervalOneDay, 1, models.Day, 24 * time.Hour, "1 days"},
		{IntervalOneWeek, 1, models.Week, 7 * 24 * time.Hour, "7 days"},
		{IntervalOneMonth, 1, models.Month, 30 * 24 * time.Hour, "1 months"},
	}

	for _, tt := range tests {
		suite.Run(string(tt.interval), func() {
			multiplier, timespan := tt.interval.PolygonTimespan()
			suite.Equal(tt.multiplier, multiplier)
			suite.Equal(tt.timespan, timespan)
			suite.Equal(tt.duration, tt.interval.Duration())
			suite.Equal(tt.duckdb, tt.interval.DuckDBInterval())
		})
	}
}

func (suite *IntervalTestSuite) TestBinanceInterval() {
	got, err := IntervalFifteenMinutes.BinanceInterval()
	suite.NoError(err)
	suite.Equal("15m", got)

	got, err = IntervalOneWeek.BinanceInterval()
	suite.NoError(err)
	suite.Equal("1w", got)

	_, err = IntervalTwoMinutes.BinanceInterval()
	suite.Error(err)
}
