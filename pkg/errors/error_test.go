package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeNoDataFound, "no bars for %s", "EURUSD=X")
	suite.Equal(ErrCodeNoDataFound, err.Code)
	suite.Equal("no bars for EURUSD=X", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", cause)
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal("fetch failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection reset")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "fetch failed for %s", "AAPL")
	suite.Equal("fetch failed for AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[100] invalid parameter", New(ErrCodeInvalidParameter, "invalid parameter").Error())

	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", errors.New("timeout"))
	suite.Equal("[700] fetch failed: timeout", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("timeout")
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", cause)
	suite.Equal(cause, errors.Unwrap(err))
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	var coded *Error
	suite.True(As(fmt.Errorf("outer: %w", New(ErrCodeInvalidStrategy, "bad")), &coded))
	suite.Equal(ErrCodeInvalidStrategy, coded.Code)
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidSeries, GetCode(New(ErrCodeInvalidSeries, "bad bar")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))

	// The outermost code wins.
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch", New(ErrCodeNoDataFound, "empty"))
	suite.Equal(ErrCodeMarketDataFetchFailed, GetCode(err))
	suite.True(HasCode(err, ErrCodeMarketDataFetchFailed))
	suite.False(HasCode(err, ErrCodeNoDataFound))
}

func (suite *ErrorTestSuite) TestChainHasCode() {
	inner := New(ErrCodeNoDataFound, "empty")
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch", fmt.Errorf("provider: %w", inner))

	suite.True(ChainHasCode(err, ErrCodeMarketDataFetchFailed))
	suite.True(ChainHasCode(err, ErrCodeNoDataFound))
	suite.False(ChainHasCode(err, ErrCodeInvalidSeries))
	suite.False(ChainHasCode(nil, ErrCodeNoDataFound))
	suite.False(ChainHasCode(errors.New("plain"), ErrCodeNoDataFound))
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(204), ErrCodeNoDataFound)
	suite.Equal(ErrorCode(302), ErrCodeIndicatorCalculation)
	suite.Equal(ErrorCode(403), ErrCodeInvalidStrategy)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
	suite.Equal(ErrorCode(800), ErrCodeNotificationFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(20, 5, "AAPL", "need %d bars, got %d", 20, 5)
	suite.Equal(20, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("AAPL", err.Symbol)
	suite.Equal("need 20 bars, got 5", err.Error())

	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(errors.New("plain")))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "x")))
	suite.False(IsInsufficientDataError(nil))
}
