package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ResultTestSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func (suite *ResultTestSuite) TestRound() {
	suite.Equal(1.2346, Round(1.23456))
	suite.Equal(-0.0001, Round(-0.00005))
	suite.Equal(100.0, Round(100))
	suite.True(math.IsNaN(Round(math.NaN())))
	suite.True(math.IsInf(Round(math.Inf(1)), 1))
}

func (suite *ResultTestSuite) TestNewErrorRow() {
	row := NewErrorRow("EMPTY", errors.New(errors.ErrCodeNoDataFound, "no bars"))
	suite.Equal("EMPTY", row.Symbol)
	suite.Equal(TradeSignalNoData, row.Signal)
	suite.Equal(ErrorKindNoData, row.ErrorKind)
	suite.Contains(row.Error, "no bars")
	suite.True(row.Failed())

	ok := Row{Symbol: "GOOD", Signal: TradeSignalBuy}
	suite.False(ok.Failed())
}

func (suite *ResultTestSuite) TestReportCounts() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := &Report{
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Rows: []Row{
			{Symbol: "A", Signal: TradeSignalBuy},
			{Symbol: "B", Signal: TradeSignalNoData},
			{Symbol: "C", Signal: TradeSignalNoData},
			{Symbol: "D", Signal: TradeSignalError},
		},
	}

	counts := report.Counts()
	suite.Equal(1, counts[TradeSignalBuy])
	suite.Equal(2, counts[TradeSignalNoData])
	suite.Equal(1, counts[TradeSignalError])
	suite.Equal(0, counts[TradeSignalSell])
	suite.Equal(3*time.Second, report.Duration())
}
