// Package errors provides coded errors for the screener.
//
// Codes are grouped by range:
//   - General (1-99)
//   - Validation (100-199): bad parameters, periods, intervals and malformed series
//   - Data (200-299): empty or unavailable market data
//   - Indicator (300-399): registry lookups and numeric failures
//   - Strategy (400-499): unknown strategy names and bad strategy configuration
//   - Market data (700-799): provider fetch and parse failures
//   - Notification (800-899): alert delivery failures
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeNoDataFound, "no bars for %s", symbol)
//	err = errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "polygon aggregates", cause)
//	if errors.HasCode(err, errors.ErrCodeNoDataFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is an error carrying an ErrorCode and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf attaches a code and formatted message to cause.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether the outermost *Error in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ChainHasCode reports whether any *Error in err's chain has code.
// Loaders wrap provider errors, so the interesting code is not always on top.
func ChainHasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if e.Code == code {
			return true
		}

		err = e.Cause
	}

	return false
}

// InsufficientDataError reports a series shorter than a calculation needs.
type InsufficientDataError struct {
	Required int
	Actual   int
	Symbol   string
	Message  string
}

// NewInsufficientDataError creates an InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates an InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return NewInsufficientDataError(required, actual, symbol, fmt.Sprintf(format, args...))
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError reports whether err's chain holds an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
