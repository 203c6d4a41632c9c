package types

import "github.com/rxtech-lab/argo-screener/pkg/errors"

// TradeSignal is the strategy-level classification of the latest bar.
type TradeSignal string

const (
	// TradeSignalBuy means every long condition of the strategy holds
	TradeSignalBuy TradeSignal = "Buy"
	// TradeSignalSell means every short condition of the strategy holds
	TradeSignalSell TradeSignal = "Sell"
	// TradeSignalNoSetup means the data was fine but no rule fired
	TradeSignalNoSetup TradeSignal = "NoSetup"
	// TradeSignalNoData means the loader returned nothing usable or too little history
	TradeSignalNoData TradeSignal = "NoData"
	// TradeSignalInvalidStrategy means the strategy name was not recognised
	TradeSignalInvalidStrategy TradeSignal = "InvalidStrategy"
	// TradeSignalError means the symbol failed somewhere in fetch or computation
	TradeSignalError TradeSignal = "Error"
)

// IsActionable reports whether the signal should trigger an alert.
func (s TradeSignal) IsActionable() bool {
	return s == TradeSignalBuy || s == TradeSignalSell
}

// TrendLabel compares a fast and a slow EMA at one bar.
type TrendLabel string

const (
	TrendUptrend   TrendLabel = "Uptrend"
	TrendDowntrend TrendLabel = "Downtrend"
	TrendUnknown   TrendLabel = "Unknown"
)

// CrossEvent marks a bar where the fast/slow EMA ordering flipped.
type CrossEvent string

const (
	CrossBullish CrossEvent = "BullishCross"
	CrossBearish CrossEvent = "BearishCross"
	CrossNone    CrossEvent = "None"
)

// PullbackSignal marks a bar where price touched the fast EMA inside a trend.
type PullbackSignal string

const (
	PullbackBuySetup  PullbackSignal = "BuySetup"
	PullbackSellSetup PullbackSignal = "SellSetup"
	PullbackNone      PullbackSignal = "None"
)

// ErrorKind classifies why a symbol did not produce a normal classification.
type ErrorKind string

const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindNoData              ErrorKind = "NoData"
	ErrorKindInsufficientHistory ErrorKind = "InsufficientHistory"
	ErrorKindInvalidStrategy     ErrorKind = "InvalidStrategy"
	ErrorKindFetchFailed         ErrorKind = "FetchFailed"
	ErrorKindInvalidSeries       ErrorKind = "InvalidSeries"
	ErrorKindComputation         ErrorKind = "ComputationError"
)

// Signal returns the trade signal reported for a row failing with this kind.
func (k ErrorKind) Signal() TradeSignal {
	switch k {
	case ErrorKindNoData, ErrorKindInsufficientHistory:
		return TradeSignalNoData
	case ErrorKindInvalidStrategy:
		return TradeSignalInvalidStrategy
	case ErrorKindNone:
		return TradeSignalNoSetup
	default:
		return TradeSignalError
	}
}

// ErrorKindFromError maps a coded error onto the row taxonomy. Anything
// without a recognised code is a computation error.
func ErrorKindFromError(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	if errors.IsInsufficientDataError(err) {
		return ErrorKindInsufficientHistory
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeNoDataFound, errors.ErrCodeDataNotFound:
		return ErrorKindNoData
	case errors.ErrCodeInsufficientData:
		return ErrorKindInsufficientHistory
	case errors.ErrCodeInvalidStrategy, errors.ErrCodeStrategyConfigError, errors.ErrCodeInvalidThreshold:
		return ErrorKindInvalidStrategy
	case errors.ErrCodeMarketDataFetchFailed, errors.ErrCodeMarketDataParseFailed,
		errors.ErrCodeDataSourceUnavailable, errors.ErrCodeQueryFailed:
		return ErrorKindFetchFailed
	case errors.ErrCodeInvalidSeries:
		return ErrorKindInvalidSeries
	default:
		return ErrorKindComputation
	}
}
