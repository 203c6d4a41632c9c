package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) bar(i int) types.Bar {
	return types.Bar{
		Time:   time.Date(2024, 3, 4, 9, 30+i, 0, 0, time.UTC),
		Open:   150 + float64(i),
		High:   155 + float64(i),
		Low:    148 + float64(i),
		Close:  152 + float64(i),
		Volume: 1000,
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "AAPL.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "AAPL.parquet"))

	err := writer.Write("AAPL", suite.bar(0))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFullWorkflow() {
	outputPath := filepath.Join(suite.tempDir, "SPY.parquet")
	writer := NewDuckDBWriter(outputPath)

	suite.Require().NoError(writer.Initialize())

	// written out of order on purpose
	for _, i := range []int{3, 0, 2, 1, 4} {
		suite.Require().NoError(writer.Write("SPY", suite.bar(i)))
	}

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)
	suite.NoError(writer.Close())

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT symbol, time, close FROM read_parquet('%s')", path))
	suite.Require().NoError(err)
	defer rows.Close()

	var closes []float64

	for rows.Next() {
		var (
			symbol string
			ts     time.Time
			close  float64
		)

		suite.Require().NoError(rows.Scan(&symbol, &ts, &close))
		suite.Equal("SPY", symbol)

		closes = append(closes, close)
	}

	suite.Equal([]float64{152, 153, 154, 155, 156}, closes)
}

func (suite *DuckDBWriterTestSuite) TestCloseIsIdempotent() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "AAPL.parquet"))
	suite.Require().NoError(writer.Initialize())

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())

	duckWriter := writer.(*DuckDBWriter)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)

	err := writer.Write("AAPL", suite.bar(0))
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestDoubleFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "AAPL.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write("AAPL", suite.bar(0)))

	_, err := writer.Finalize()
	suite.NoError(err)

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter("/nonexistent/directory/AAPL.parquet")
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write("AAPL", suite.bar(0)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export to parquet")

	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestExportSeries() {
	outputPath := filepath.Join(suite.tempDir, "BTCUSDT_1h.parquet")
	series := types.Series{Symbol: "BTCUSDT", Bars: []types.Bar{suite.bar(0), suite.bar(1)}}

	path, err := ExportSeries(NewDuckDBWriter(outputPath), series)
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	info, err := os.Stat(path)
	suite.Require().NoError(err)
	suite.Greater(info.Size(), int64(0))
}
