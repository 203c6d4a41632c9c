package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/types"
)

// DataGenerator generates realistic OHLC series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "EURUSD=X", "AAPL")
	Symbol string
	// StartTime is the time of the first bar
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       5 * time.Minute,
		Count:          500,
		InitialPrice:   100.0,
		Volatility:     0.002, // 0.2% per bar
		Trend:          0.0,   // neutral
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a series following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Series {
	bars := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.Bar{
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(volume, 2),
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return types.Series{
		Symbol:   config.Symbol,
		Interval: config.Interval.String(),
		Bars:     bars,
	}
}

// GenerateMultiSymbol generates one series per symbol with slightly varied
// starting price and volatility.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) map[string]types.Series {
	out := make(map[string]types.Series, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		out[symbol] = g.Generate(config)
	}

	return out
}

// SeriesFromCloses builds a series whose bars open at the previous close and
// close at the given prices. High and low hug the body.
func SeriesFromCloses(symbol string, start time.Time, interval time.Duration, closes []float64) types.Series {
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}

		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * interval),
			Open:   open,
			High:   math.Max(open, c),
			Low:    math.Min(open, c),
			Close:  c,
			Volume: 1000,
		}
	}

	return types.Series{
		Symbol:   symbol,
		Interval: interval.String(),
		Bars:     bars,
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
