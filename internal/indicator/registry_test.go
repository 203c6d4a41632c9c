package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockIndicator is a simple fake indicator for testing the registry and engine
type mockIndicator struct {
	name    string
	outputs []types.IndicatorType
	value   float64
	err     error
	calls   int
}

func newMockIndicator(name string, outputs ...types.IndicatorType) *mockIndicator {
	return &mockIndicator{name: name, outputs: outputs}
}

func (m *mockIndicator) Name() string {
	return m.name
}

func (m *mockIndicator) Outputs() []types.IndicatorType {
	return m.outputs
}

func (m *mockIndicator) Calculate(series types.Series) (map[types.IndicatorType][]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	out := make(map[types.IndicatorType][]float64, len(m.outputs))
	for _, t := range m.outputs {
		column := make([]float64, series.Len())
		for i := range column {
			column[i] = m.value
		}

		out[t] = column
	}

	return out, nil
}

func (m *mockIndicator) Config(params ...any) error {
	return nil
}

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestNewIndicatorRegistry() {
	registry := NewIndicatorRegistry()
	suite.NotNil(registry)
	suite.Empty(registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestRegisterIndicator() {
	registry := NewIndicatorRegistry()

	indicator := newMockIndicator("rsi", types.IndicatorTypeRSI)
	err := registry.RegisterIndicator(indicator)
	suite.NoError(err)

	retrieved, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(indicator, retrieved)
}

func (suite *RegistryTestSuite) TestRegisterMultiOutput() {
	registry := NewIndicatorRegistry()

	macd := newMockIndicator("macd", types.IndicatorTypeMACD, types.IndicatorTypeMACDSignal)
	suite.NoError(registry.RegisterIndicator(macd))

	a, err := registry.GetIndicator(types.IndicatorTypeMACD)
	suite.NoError(err)
	b, err := registry.GetIndicator(types.IndicatorTypeMACDSignal)
	suite.NoError(err)
	suite.Same(a, b)
}

func (suite *RegistryTestSuite) TestRegisterIndicatorDuplicate() {
	registry := NewIndicatorRegistry()

	suite.NoError(registry.RegisterIndicator(newMockIndicator("a", types.IndicatorTypeRSI)))

	err := registry.RegisterIndicator(newMockIndicator("b", types.IndicatorTypeATR, types.IndicatorTypeRSI))
	suite.Error(err)
	suite.Contains(err.Error(), "already registered")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))

	// A rejected registration leaves nothing behind.
	_, err = registry.GetIndicator(types.IndicatorTypeATR)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestRegisterNoOutputs() {
	registry := NewIndicatorRegistry()
	suite.Error(registry.RegisterIndicator(newMockIndicator("empty")))
}

func (suite *RegistryTestSuite) TestGetIndicatorNotFound() {
	registry := NewIndicatorRegistry()

	_, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Error(err)
	suite.Contains(err.Error(), "not found")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestListIndicators() {
	registry := NewIndicatorRegistry()

	suite.NoError(registry.RegisterIndicator(newMockIndicator("atr", types.IndicatorTypeATR)))
	suite.NoError(registry.RegisterIndicator(newMockIndicator("ema8", types.IndicatorTypeEMA8)))

	suite.Equal([]types.IndicatorType{types.IndicatorTypeEMA8, types.IndicatorTypeATR}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestRemoveIndicator() {
	registry := NewIndicatorRegistry()

	suite.NoError(registry.RegisterIndicator(newMockIndicator("macd", types.IndicatorTypeMACD, types.IndicatorTypeMACDSignal)))
	suite.NoError(registry.RemoveIndicator(types.IndicatorTypeMACDSignal))
	suite.Empty(registry.ListIndicators())

	err := registry.RemoveIndicator(types.IndicatorTypeMACD)
	suite.Error(err)
	suite.Contains(err.Error(), "not found")
}

func (suite *RegistryTestSuite) TestNewDefaultRegistry() {
	registry, err := NewDefaultRegistry(DefaultConfig())
	suite.NoError(err)
	suite.Equal(types.AllIndicatorTypes(), registry.ListIndicators())

	rsi, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal("RSI(14,simple)", rsi.Name())

	macd, err := registry.GetIndicator(types.IndicatorTypeMACDSignal)
	suite.NoError(err)
	suite.Equal("MACD(12,26,9)", macd.Name())
}

func (suite *RegistryTestSuite) TestNewDefaultRegistryCustomConfig() {
	cfg := Config{MACD: MACDLong, RSIMethod: RSIMethodWilder, RSIPeriod: 21, ATRPeriod: 7}

	registry, err := NewDefaultRegistry(cfg)
	suite.NoError(err)

	rsi, _ := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Equal("RSI(21,wilder)", rsi.Name())

	atr, _ := registry.GetIndicator(types.IndicatorTypeATR)
	suite.Equal("ATR(7)", atr.Name())

	macd, _ := registry.GetIndicator(types.IndicatorTypeMACD)
	suite.Equal("MACD(24,60,18)", macd.Name())
}

func (suite *RegistryTestSuite) TestNewDefaultRegistryInvalidConfig() {
	cfg := DefaultConfig()
	cfg.RSIPeriod = 0

	_, err := NewDefaultRegistry(cfg)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
