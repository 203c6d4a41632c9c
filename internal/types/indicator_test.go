package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("EMA8"), IndicatorTypeEMA8)
	suite.Equal(IndicatorType("EMA21"), IndicatorTypeEMA21)
	suite.Equal(IndicatorType("EMA50"), IndicatorTypeEMA50)
	suite.Equal(IndicatorType("EMA200"), IndicatorTypeEMA200)
	suite.Equal(IndicatorType("RSI"), IndicatorTypeRSI)
	suite.Equal(IndicatorType("ATR"), IndicatorTypeATR)
	suite.Equal(IndicatorType("MACD"), IndicatorTypeMACD)
	suite.Equal(IndicatorType("MACDSignal"), IndicatorTypeMACDSignal)
	suite.Len(AllIndicatorTypes(), 8)
}

func (suite *IndicatorTestSuite) TestEMAWindow() {
	suite.Equal(8, IndicatorTypeEMA8.EMAWindow())
	suite.Equal(21, IndicatorTypeEMA21.EMAWindow())
	suite.Equal(50, IndicatorTypeEMA50.EMAWindow())
	suite.Equal(200, IndicatorTypeEMA200.EMAWindow())
	suite.Equal(0, IndicatorTypeRSI.EMAWindow())
}

func (suite *IndicatorTestSuite) TestParseIndicatorType() {
	t, ok := ParseIndicatorType(" ema21 ")
	suite.True(ok)
	suite.Equal(IndicatorTypeEMA21, t)

	t, ok = ParseIndicatorType("Signal")
	suite.True(ok)
	suite.Equal(IndicatorTypeMACDSignal, t)

	_, ok = ParseIndicatorType("VWAP")
	suite.False(ok)
}

func (suite *IndicatorTestSuite) TestParseIndicatorTypesDropsUnknown() {
	types := ParseIndicatorTypes([]string{"EMA8", "VWAP", "rsi", "EMA8", "Signal"})
	suite.Equal([]IndicatorType{IndicatorTypeEMA8, IndicatorTypeRSI, IndicatorTypeMACDSignal}, types)
	suite.Empty(ParseIndicatorTypes(nil))
}

func (suite *IndicatorTestSuite) TestIndicatorSet() {
	set := NewIndicatorSet(3)
	suite.Equal(3, set.Len())
	suite.False(set.Has(IndicatorTypeRSI))

	values := []float64{math.NaN(), 40, 60}
	withRSI := set.With(IndicatorTypeRSI, values)

	// With copies, so the original set and input are untouched.
	suite.False(set.Has(IndicatorTypeRSI))
	values[2] = 0
	suite.Equal(60.0, withRSI.At(IndicatorTypeRSI, 2))

	suite.True(math.IsNaN(withRSI.At(IndicatorTypeRSI, 0)))
	suite.True(math.IsNaN(withRSI.At(IndicatorTypeRSI, 3)))
	suite.True(math.IsNaN(withRSI.At(IndicatorTypeATR, 1)))

	// Wrong-length columns are ignored.
	suite.False(withRSI.With(IndicatorTypeATR, []float64{1}).Has(IndicatorTypeATR))

	column, ok := withRSI.Get(IndicatorTypeRSI)
	suite.True(ok)
	column[1] = -1
	suite.Equal(40.0, withRSI.At(IndicatorTypeRSI, 1))

	_, ok = withRSI.Get(IndicatorTypeATR)
	suite.False(ok)
}

func (suite *IndicatorTestSuite) TestTypesAndRow() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := Series{Bars: []Bar{
		{Time: start, Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Time: start.Add(time.Minute), Open: 1.5, High: 2.5, Low: 1, Close: 2},
	}}

	set := NewIndicatorSet(2).
		With(IndicatorTypeRSI, []float64{math.NaN(), 55}).
		With(IndicatorTypeEMA8, []float64{1.5, 1.6})

	suite.Equal([]IndicatorType{IndicatorTypeEMA8, IndicatorTypeRSI}, set.Types())

	row := set.Row(series, 1)
	suite.Equal(start.Add(time.Minute), row.Time)
	suite.Equal(2.0, row.Close)
	suite.Equal(2.5, row.High)
	suite.Equal(55.0, row.Value(IndicatorTypeRSI))
	suite.Equal(1.6, row.Value(IndicatorTypeEMA8))
	suite.True(math.IsNaN(row.Value(IndicatorTypeMACD)))
}
