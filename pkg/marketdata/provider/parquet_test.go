package provider

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
)

type ParquetClientTestSuite struct {
	suite.Suite
	dir    string
	client *ParquetClient
	start  time.Time
}

func TestParquetClientSuite(t *testing.T) {
	suite.Run(t, new(ParquetClientTestSuite))
}

func (suite *ParquetClientTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.start = time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)

	// twelve one-minute bars with close 1..12
	bars := make([]types.Bar, 12)
	for i := range bars {
		c := float64(i + 1)
		bars[i] = types.Bar{
			Time:   suite.start.Add(time.Duration(i) * time.Minute),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 10,
		}
	}

	_, err := writer.ExportSeries(writer.NewDuckDBWriter(filepath.Join(suite.dir, "AAPL_1m.parquet")), types.Series{Symbol: "AAPL", Bars: bars})
	suite.Require().NoError(err)

	_, err = writer.ExportSeries(writer.NewDuckDBWriter(filepath.Join(suite.dir, "AAPLX.parquet")), types.Series{Symbol: "AAPLX", Bars: bars[:1]})
	suite.Require().NoError(err)

	client, err := NewParquetClient(suite.dir)
	suite.Require().NoError(err)
	suite.client = client
}

func (suite *ParquetClientTestSuite) TearDownTest() {
	suite.NoError(suite.client.Close())
}

func (suite *ParquetClientTestSuite) TestFetchRaw() {
	bars, err := suite.client.Fetch(context.Background(), "aapl", suite.start, suite.start.Add(time.Hour), 1, models.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 12)
	suite.Equal(suite.start, bars[0].Time)
	suite.Equal(12.0, bars[11].Close)
}

func (suite *ParquetClientTestSuite) TestFetchResampled() {
	bars, err := suite.client.Fetch(context.Background(), "AAPL", suite.start, suite.start.Add(time.Hour), 5, models.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	first := bars[0]
	suite.Equal(suite.start, first.Time)
	suite.Equal(0.5, first.Open)
	suite.Equal(5.0, first.Close)
	suite.Equal(6.0, first.High)
	suite.Equal(0.0, first.Low)
	suite.Equal(50.0, first.Volume)

	last := bars[2]
	suite.Equal(suite.start.Add(10*time.Minute), last.Time)
	suite.Equal(12.0, last.Close)
	suite.Equal(20.0, last.Volume)
}

func (suite *ParquetClientTestSuite) TestFetchWindow() {
	bars, err := suite.client.Fetch(context.Background(), "AAPL", suite.start.Add(3*time.Minute), suite.start.Add(6*time.Minute), 1, models.Minute)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal(4.0, bars[0].Close)
	suite.Equal(6.0, bars[2].Close)
}

func (suite *ParquetClientTestSuite) TestFetchUnknownSymbol() {
	bars, err := suite.client.Fetch(context.Background(), "MSFT", suite.start, suite.start.Add(time.Hour), 1, models.Minute)
	suite.NoError(err)
	suite.Empty(bars)

	bars, err = suite.client.Fetch(context.Background(), "../AAPL", suite.start, suite.start.Add(time.Hour), 1, models.Minute)
	suite.NoError(err)
	suite.Empty(bars)
}

func (suite *ParquetClientTestSuite) TestNewParquetClientRequiresDir() {
	_, err := NewParquetClient("")
	suite.Error(err)
}

func (suite *ParquetClientTestSuite) TestDuckDBInterval() {
	suite.Equal("5 minutes", DuckDBInterval(5, models.Minute))
	suite.Equal("2 hours", DuckDBInterval(2, models.Hour))
	suite.Equal("1 days", DuckDBInterval(1, models.Day))
	suite.Equal("7 days", DuckDBInterval(1, models.Week))
	suite.Equal("1 months", DuckDBInterval(1, models.Month))
}
