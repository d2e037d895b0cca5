// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters and batch configuration
//   - Data errors (200-299): Missing or misaligned bar matrices
//   - Indicator errors (300-399): Indicator calculation and column lookup errors
//   - Strategy errors (400-499): Lookback, signal sequence and strategy setup errors
//   - Backtest errors (600-699): Replay errors
//   - Report errors (700-799): Output export errors
//   - Aggregation errors (900-999): Batch orchestration errors
//
// Three failure kinds matter to the batch runner and have their own types:
// InsufficientHistoryError and InvalidSignalSequenceError are per-instrument
// and excluded from aggregation, ConfigurationError aborts the whole batch.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to read close.csv", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeInsufficientHistory) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Typed errors report their fixed code. Returns ErrCodeUnknown otherwise.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var insufficient *InsufficientHistoryError
	if errors.As(err, &insufficient) {
		return ErrCodeInsufficientHistory
	}

	var sequence *InvalidSignalSequenceError
	if errors.As(err, &sequence) {
		return ErrCodeInvalidSignalSequence
	}

	var config *ConfigurationError
	if errors.As(err, &config) {
		return ErrCodeInvalidConfiguration
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientHistoryError is returned when a strategy needs more bars than
// the instrument supplies.
type InsufficientHistoryError struct {
	Required int    // Bars the strategy's lookback needs
	Actual   int    // Bars available
	Symbol   string // Optional: instrument code
	Message  string // Human-readable message
}

// NewInsufficientHistoryError creates a new InsufficientHistoryError.
func NewInsufficientHistoryError(required, actual int, symbol string) *InsufficientHistoryError {
	return &InsufficientHistoryError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf("insufficient history for %q: need %d bars, got %d", symbol, required, actual),
	}
}

// Error implements the error interface.
func (e *InsufficientHistoryError) Error() string {
	return e.Message
}

// IsInsufficientHistoryError checks if an error is an InsufficientHistoryError.
func IsInsufficientHistoryError(err error) bool {
	var insufficientErr *InsufficientHistoryError

	return errors.As(err, &insufficientErr)
}

// InvalidSignalSequenceError reports a signal sequence that breaks the
// position state machine: an entry while a position is open, an exit while
// flat, or bar indices that do not strictly increase.
type InvalidSignalSequenceError struct {
	Symbol   string
	BarIndex int
	Action   string
	Reason   string
}

// NewInvalidSignalSequenceError creates a new InvalidSignalSequenceError.
func NewInvalidSignalSequenceError(symbol string, barIndex int, action string, reason string) *InvalidSignalSequenceError {
	return &InvalidSignalSequenceError{
		Symbol:   symbol,
		BarIndex: barIndex,
		Action:   action,
		Reason:   reason,
	}
}

// Error implements the error interface.
func (e *InvalidSignalSequenceError) Error() string {
	return fmt.Sprintf("invalid signal sequence for %q at bar %d (%s): %s", e.Symbol, e.BarIndex, e.Action, e.Reason)
}

// IsInvalidSignalSequenceError checks if an error is an InvalidSignalSequenceError.
func IsInvalidSignalSequenceError(err error) bool {
	var sequenceErr *InvalidSignalSequenceError

	return errors.As(err, &sequenceErr)
}

// ConfigurationError reports a missing or invalid batch or strategy setting.
// It affects every instrument identically, so it is fatal for the batch.
type ConfigurationError struct {
	Field  string
	Reason string
	Cause  error
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field string, reason string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: reason,
		Cause:  cause,
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration %q: %s", e.Field, e.Reason)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap returns the underlying error cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// IsConfigurationError checks if an error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError

	return errors.As(err, &configErr)
}

// Kind is the stable failure classification written to failure reports.
type Kind string

const (
	KindInsufficientHistory   Kind = "insufficient_history"
	KindInvalidSignalSequence Kind = "invalid_signal_sequence"
	KindConfiguration         Kind = "configuration"
	KindPanic                 Kind = "panic"
	KindUnknown               Kind = "unknown"
)

// KindOf classifies err for the failure report.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case IsInsufficientHistoryError(err):
		return KindInsufficientHistory
	case IsInvalidSignalSequenceError(err):
		return KindInvalidSignalSequence
	case IsConfigurationError(err):
		return KindConfiguration
	}

	switch GetCode(err) {
	case ErrCodeInsufficientHistory:
		return KindInsufficientHistory
	case ErrCodeInvalidSignalSequence:
		return KindInvalidSignalSequence
	case ErrCodeInvalidConfiguration, ErrCodeUnknownParameter, ErrCodeMissingParameter, ErrCodeUnsupportedStrategy:
		return KindConfiguration
	case ErrCodeInstrumentPanic:
		return KindPanic
	default:
		return KindUnknown
	}
}
