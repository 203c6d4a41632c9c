package signal

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/mocks"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ClassifierTestSuite struct {
	suite.Suite
	scalping types.StrategyConfig
	swing    types.StrategyConfig
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierTestSuite))
}

func (suite *ClassifierTestSuite) SetupTest() {
	var err error

	suite.scalping, err = types.NewStrategyConfig(types.StrategyScalping)
	suite.Require().NoError(err)

	suite.swing, err = types.NewStrategyConfig(types.StrategySwing)
	suite.Require().NoError(err)
}

func snapshot(values map[types.IndicatorType]float64) types.Snapshot {
	return types.Snapshot{
		Time:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Close:  105,
		Values: values,
	}
}

func scalpingValues(ema8, ema21, macd, macdSignal, rsi float64) map[types.IndicatorType]float64 {
	return map[types.IndicatorType]float64{
		types.IndicatorTypeEMA8:       ema8,
		types.IndicatorTypeEMA21:      ema21,
		types.IndicatorTypeMACD:       macd,
		types.IndicatorTypeMACDSignal: macdSignal,
		types.IndicatorTypeRSI:        rsi,
	}
}

func (suite *ClassifierTestSuite) TestScalpingBuy() {
	latest := snapshot(scalpingValues(110, 100, 2, 1, 50))

	result, err := Classify(latest, types.Snapshot{}, suite.scalping)
	suite.NoError(err)
	suite.Equal(types.TradeSignalBuy, result.Signal)
	suite.Equal(latest, result.Snapshot)
	suite.Contains(result.Reason, "EMA8")
}

func (suite *ClassifierTestSuite) TestScalpingSell() {
	result, err := Classify(snapshot(scalpingValues(90, 100, -2, -1, 45)), types.Snapshot{}, suite.scalping)
	suite.NoError(err)
	suite.Equal(types.TradeSignalSell, result.Signal)
}

func (suite *ClassifierTestSuite) TestScalpingNoSetup() {
	tests := []struct {
		name   string
		values map[types.IndicatorType]float64
	}{
		{"rsi above band", scalpingValues(110, 100, 2, 1, 65)},
		{"rsi on lower bound", scalpingValues(110, 100, 2, 1, 40)},
		{"rsi on upper bound", scalpingValues(90, 100, -2, -1, 60)},
		{"macd disagrees", scalpingValues(110, 100, 1, 2, 50)},
		{"emas tied", scalpingValues(100, 100, 2, 1, 50)},
		{"macd tied", scalpingValues(90, 100, 1, 1, 50)},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result, err := Classify(snapshot(tc.values), types.Snapshot{}, suite.scalping)
			suite.NoError(err)
			suite.Equal(types.TradeSignalNoSetup, result.Signal)
		})
	}
}

func (suite *ClassifierTestSuite) TestSwingUsesSlowPairAndWideBand() {
	values := map[types.IndicatorType]float64{
		types.IndicatorTypeEMA8:       90, // ignored by Swing
		types.IndicatorTypeEMA21:      100,
		types.IndicatorTypeEMA50:      120,
		types.IndicatorTypeEMA200:     100,
		types.IndicatorTypeMACD:       1,
		types.IndicatorTypeMACDSignal: 0.5,
		types.IndicatorTypeRSI:        35,
	}

	result, err := Classify(snapshot(values), types.Snapshot{}, suite.swing)
	suite.NoError(err)
	suite.Equal(types.TradeSignalBuy, result.Signal)

	// 35 is outside the Scalping band.
	_, err = Classify(snapshot(values), types.Snapshot{}, suite.scalping)
	suite.NoError(err)

	values[types.IndicatorTypeRSI] = 75
	result, err = Classify(snapshot(values), types.Snapshot{}, suite.swing)
	suite.NoError(err)
	suite.Equal(types.TradeSignalNoSetup, result.Signal)
	suite.Contains(result.Reason, "outside")
}

func (suite *ClassifierTestSuite) TestMACDThresholdsAreConjunctive() {
	cfg := suite.scalping.WithMACDThresholds(optional.Some(3.0), optional.Some(-3.0))

	result, err := Classify(snapshot(scalpingValues(110, 100, 2, 1, 50)), types.Snapshot{}, cfg)
	suite.NoError(err)
	suite.Equal(types.TradeSignalNoSetup, result.Signal)

	result, err = Classify(snapshot(scalpingValues(110, 100, 4, 1, 50)), types.Snapshot{}, cfg)
	suite.NoError(err)
	suite.Equal(types.TradeSignalBuy, result.Signal)

	result, err = Classify(snapshot(scalpingValues(90, 100, -2, -1, 50)), types.Snapshot{}, cfg)
	suite.NoError(err)
	suite.Equal(types.TradeSignalNoSetup, result.Signal)

	result, err = Classify(snapshot(scalpingValues(90, 100, -4, -1, 50)), types.Snapshot{}, cfg)
	suite.NoError(err)
	suite.Equal(types.TradeSignalSell, result.Signal)

	// The threshold never replaces the base rule.
	result, err = Classify(snapshot(scalpingValues(90, 100, 4, 1, 50)), types.Snapshot{}, cfg)
	suite.NoError(err)
	suite.Equal(types.TradeSignalNoSetup, result.Signal)
}

func (suite *ClassifierTestSuite) TestNaNIsComputationError() {
	values := scalpingValues(110, 100, 2, 1, math.NaN())

	result, err := Classify(snapshot(values), types.Snapshot{}, suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalError, result.Signal)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
	suite.Equal(types.ErrorKindComputation, types.ErrorKindFromError(err))
}

func (suite *ClassifierTestSuite) TestMissingIndicatorIsComputationError() {
	values := scalpingValues(110, 100, 2, 1, 50)
	delete(values, types.IndicatorTypeMACDSignal)

	result, err := Classify(snapshot(values), types.Snapshot{}, suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalError, result.Signal)
}

func (suite *ClassifierTestSuite) TestInfIsComputationError() {
	result, err := Classify(snapshot(scalpingValues(math.Inf(1), 100, 2, 1, 50)), types.Snapshot{}, suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalError, result.Signal)
}

func (suite *ClassifierTestSuite) TestInvalidStrategy() {
	cfg := suite.scalping
	cfg.Name = "Momentum"

	result, err := Classify(snapshot(scalpingValues(110, 100, 2, 1, 50)), types.Snapshot{}, cfg)
	suite.Error(err)
	suite.Equal(types.TradeSignalInvalidStrategy, result.Signal)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStrategy))
	suite.Equal(types.ErrorKindInvalidStrategy, types.ErrorKindFromError(err))
}

func (suite *ClassifierTestSuite) TestBrokenConfigIsInvalidStrategy() {
	cfg := suite.scalping
	cfg.RSILower = 80

	result, err := Classify(snapshot(scalpingValues(110, 100, 2, 1, 50)), types.Snapshot{}, cfg)
	suite.Error(err)
	suite.Equal(types.TradeSignalInvalidStrategy, result.Signal)
}

func (suite *ClassifierTestSuite) TestRSITrend() {
	latest := snapshot(scalpingValues(110, 100, 2, 1, 50))

	result, err := Classify(latest, snapshot(map[types.IndicatorType]float64{types.IndicatorTypeRSI: 45}), suite.scalping)
	suite.NoError(err)
	suite.Equal(types.RSIRising, result.RSITrend)

	result, err = Classify(latest, snapshot(map[types.IndicatorType]float64{types.IndicatorTypeRSI: 55}), suite.scalping)
	suite.NoError(err)
	suite.Equal(types.RSIFalling, result.RSITrend)

	result, err = Classify(latest, types.Snapshot{}, suite.scalping)
	suite.NoError(err)
	suite.Empty(result.RSITrend)
}

func (suite *ClassifierTestSuite) TestClassifySeriesEmpty() {
	result, err := ClassifySeries(types.Series{Symbol: "EMPTY"}, types.NewIndicatorSet(0), suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalNoData, result.Signal)
	suite.Equal(types.ErrorKindNoData, types.ErrorKindFromError(err))
}

func (suite *ClassifierTestSuite) TestClassifySeriesShort() {
	config := mocks.DefaultConfig()
	config.Count = MinBars - 1
	series := mocks.NewDataGenerator(1).Generate(config)

	// A set with nothing in it proves no comparison happens.
	result, err := ClassifySeries(series, types.NewIndicatorSet(series.Len()), suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalNoData, result.Signal)
	suite.True(errors.IsInsufficientDataError(err))
	suite.Equal(types.ErrorKindInsufficientHistory, types.ErrorKindFromError(err))
}

func (suite *ClassifierTestSuite) TestClassifySeriesMisalignedSet() {
	series := mocks.NewDataGenerator(1).Generate(mocks.DefaultConfig())

	result, err := ClassifySeries(series, types.NewIndicatorSet(3), suite.scalping)
	suite.Error(err)
	suite.Equal(types.TradeSignalError, result.Signal)
}

func (suite *ClassifierTestSuite) TestClassifySeriesEndToEnd() {
	series := mocks.NewDataGenerator(17).Generate(mocks.DefaultConfig())

	set, err := indicator.Compute(series, suite.scalping.RequiredIndicators(), indicator.DefaultConfig())
	suite.Require().NoError(err)

	result, err := ClassifySeries(series, set, suite.scalping)
	suite.NoError(err)
	suite.Contains([]types.TradeSignal{types.TradeSignalBuy, types.TradeSignalSell, types.TradeSignalNoSetup}, result.Signal)
	suite.Equal(series.Bars[series.Len()-1].Time, result.Snapshot.Time)
	suite.NotEmpty(result.RSITrend)
}
