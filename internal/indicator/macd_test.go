package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/mocks"
	"github.com/stretchr/testify/suite"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func (suite *MACDTestSuite) TestNewMACD() {
	macd := NewMACD()
	impl := macd.(*MACD)
	suite.Equal(12, impl.fastPeriod)
	suite.Equal(26, impl.slowPeriod)
	suite.Equal(9, impl.signalPeriod)
	suite.Equal("MACD(12,26,9)", macd.Name())
	suite.Equal([]types.IndicatorType{types.IndicatorTypeMACD, types.IndicatorTypeMACDSignal}, macd.Outputs())
}

func (suite *MACDTestSuite) TestConfig() {
	macd := NewMACD()
	suite.NoError(macd.Config(24, 60, 18))
	suite.Equal("MACD(24,60,18)", macd.Name())

	err := macd.Config(12, 26)
	suite.Error(err)
	suite.Contains(err.Error(), "expects 3 parameters")

	err = macd.Config(26, 12, 9)
	suite.Error(err)
	suite.Contains(err.Error(), "must be less than")

	suite.Error(macd.Config(12, "26", 9))
	suite.Error(macd.Config(12, 26, 0))
}

func (suite *MACDTestSuite) TestConstantSeriesIsZero() {
	closes := []float64{50, 50, 50, 50, 50}
	macd, signal := CalculateMACD(closes, MACDStandard)
	assertSeries(&suite.Suite, []float64{0, 0, 0, 0, 0}, macd)
	assertSeries(&suite.Suite, []float64{0, 0, 0, 0, 0}, signal)
}

func (suite *MACDTestSuite) TestLineIsEMADifference() {
	closes := mocks.NewDataGenerator(11).Generate(mocks.DefaultConfig()).Closes()

	for _, cfg := range []MACDConfig{MACDStandard, MACDLong} {
		macd, signal := CalculateMACD(closes, cfg)
		fast := CalculateEMA(closes, cfg.Fast)
		slow := CalculateEMA(closes, cfg.Slow)

		for i := range closes {
			suite.InDelta(fast[i]-slow[i], macd[i], 1e-9)
		}

		assertSeries(&suite.Suite, CalculateEMA(macd, cfg.Signal), signal)
	}
}

func (suite *MACDTestSuite) TestVariantsDiffer() {
	config := mocks.DefaultConfig()
	config.Trend = 0.3
	closes := mocks.NewDataGenerator(5).Generate(config).Closes()

	standard, _ := CalculateMACD(closes, MACDStandard)
	long, _ := CalculateMACD(closes, MACDLong)

	last := len(closes) - 1
	suite.NotEqual(standard[last], long[last])
}

func (suite *MACDTestSuite) TestUptrendIsPositive() {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	macd, signal := CalculateMACD(closes, MACDStandard)
	suite.Greater(macd[99], 0.0)
	suite.Greater(macd[99], signal[99]-1e-9)
}

func (suite *MACDTestSuite) TestCalculateFillsBothColumns() {
	series := mocks.NewDataGenerator(2).Generate(mocks.DefaultConfig())

	out, err := NewMACD().Calculate(series)
	suite.NoError(err)
	suite.Len(out, 2)
	suite.Len(out[types.IndicatorTypeMACD], series.Len())
	suite.Len(out[types.IndicatorTypeMACDSignal], series.Len())
}
