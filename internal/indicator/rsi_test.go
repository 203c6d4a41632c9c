package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/mocks"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestNewRSI() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)
	suite.Equal(14, rsiImpl.period)
	suite.Equal(RSIMethodSimple, rsiImpl.method)
	suite.Equal("RSI(14,simple)", rsi.Name())
	suite.Equal([]types.IndicatorType{types.IndicatorTypeRSI}, rsi.Outputs())
}

func (suite *RSITestSuite) TestConfig() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)

	suite.NoError(rsi.Config(21))
	suite.Equal(21, rsiImpl.period)
	suite.Equal(RSIMethodSimple, rsiImpl.method)

	suite.NoError(rsi.Config(14, RSIMethodWilder))
	suite.Equal(RSIMethodWilder, rsiImpl.method)

	err := rsi.Config()
	suite.Error(err)
	suite.Contains(err.Error(), "expects 1 or 2 parameters")

	err = rsi.Config(1)
	suite.Error(err)
	suite.Contains(err.Error(), "at least 2")

	err = rsi.Config(14, "wilder")
	suite.Error(err)
	suite.Contains(err.Error(), "expected RSIMethod")

	err = rsi.Config(14, RSIMethod("ema"))
	suite.Error(err)

	err = rsi.Config(14.5)
	suite.Error(err)
}

func (suite *RSITestSuite) TestSimpleHandValues() {
	got := CalculateRSI([]float64{1, 2, 3, 2, 3}, 3)
	assertSeries(&suite.Suite, []float64{math.NaN(), math.NaN(), 100, 200.0 / 3, 200.0 / 3}, got)
}

func (suite *RSITestSuite) TestSimpleWarmUp() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}

	got := CalculateRSI(closes, 14)
	for i := 0; i < 13; i++ {
		suite.True(math.IsNaN(got[i]), "index %d", i)
	}

	for i := 13; i < len(got); i++ {
		suite.False(math.IsNaN(got[i]), "index %d", i)
	}
}

func (suite *RSITestSuite) TestZeroLossSaturates() {
	rising := []float64{1, 2, 3, 4, 5, 6}
	suite.Equal(100.0, CalculateRSI(rising, 3)[5])
	suite.Equal(100.0, CalculateWilderRSI(rising, 3)[5])

	flat := []float64{5, 5, 5, 5, 5}
	suite.Equal(100.0, CalculateRSI(flat, 3)[4])
	suite.Equal(100.0, CalculateWilderRSI(flat, 3)[4])
}

func (suite *RSITestSuite) TestZeroGainIsZero() {
	falling := []float64{6, 5, 4, 3, 2, 1}
	suite.Equal(0.0, CalculateRSI(falling, 3)[5])
	suite.Equal(0.0, CalculateWilderRSI(falling, 3)[5])
}

func (suite *RSITestSuite) TestWilderHandValues() {
	got := CalculateWilderRSI([]float64{1, 2, 3, 2, 3}, 3)
	assertSeries(&suite.Suite, []float64{math.NaN(), math.NaN(), math.NaN(), 200.0 / 3, 100 - 100/4.5}, got)
}

func (suite *RSITestSuite) TestWilderMatchesTalib() {
	gen := mocks.NewDataGenerator(42)
	config := mocks.DefaultConfig()
	config.Count = 300
	closes := gen.Generate(config).Closes()

	got := CalculateWilderRSI(closes, 14)
	want := talib.Rsi(closes, 14)

	for i := 0; i < 14; i++ {
		suite.True(math.IsNaN(got[i]), "index %d", i)
	}

	for i := 14; i < len(closes); i++ {
		suite.InDelta(want[i], got[i], 1e-6, "index %d", i)
	}
}

func (suite *RSITestSuite) TestBoundsOnRandomSeries() {
	gen := mocks.NewDataGenerator(99)

	for _, trend := range []float64{-0.5, 0, 0.5} {
		config := mocks.DefaultConfig()
		config.Trend = trend
		closes := gen.Generate(config).Closes()

		for _, values := range [][]float64{CalculateRSI(closes, 14), CalculateWilderRSI(closes, 14)} {
			for i, v := range values {
				if math.IsNaN(v) {
					continue
				}

				suite.GreaterOrEqual(v, 0.0, "index %d", i)
				suite.LessOrEqual(v, 100.0, "index %d", i)
			}
		}
	}
}

func (suite *RSITestSuite) TestShortSeries() {
	got := CalculateRSI([]float64{1, 2, 3}, 14)
	assertSeries(&suite.Suite, nanSlice(3), got)

	got = CalculateWilderRSI([]float64{1, 2, 3}, 14)
	assertSeries(&suite.Suite, nanSlice(3), got)

	suite.Empty(CalculateRSI(nil, 14))
	suite.Empty(CalculateWilderRSI(nil, 14))
}

func (suite *RSITestSuite) TestCalculatePicksMethod() {
	series := mocks.NewDataGenerator(3).Generate(mocks.DefaultConfig())

	simple := NewRSI()
	out, err := simple.Calculate(series)
	suite.NoError(err)
	assertSeries(&suite.Suite, CalculateRSI(series.Closes(), 14), out[types.IndicatorTypeRSI])

	wilder := NewRSI()
	suite.Require().NoError(wilder.Config(14, RSIMethodWilder))
	out, err = wilder.Calculate(series)
	suite.NoError(err)
	assertSeries(&suite.Suite, CalculateWilderRSI(series.Closes(), 14), out[types.IndicatorTypeRSI])
}

func (suite *RSITestSuite) TestIdempotent() {
	series := mocks.SeriesFromCloses("X", time.Unix(0, 0), time.Hour, []float64{10, 11, 10.5, 12, 11, 13, 12.5, 14})

	first := CalculateRSI(series.Closes(), 3)
	second := CalculateRSI(series.Closes(), 3)
	assertSeries(&suite.Suite, first, second)
}
