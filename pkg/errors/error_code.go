package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation / configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeUnknownParameter     ErrorCode = 103
	ErrCodeInvalidType          ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeInvalidDateRange     ErrorCode = 106

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeMisalignedData        ErrorCode = 203
	ErrCodeInstrumentNotFound    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300
	ErrCodeColumnNotFound       ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeInsufficientHistory    ErrorCode = 400
	ErrCodeInvalidSignalSequence  ErrorCode = 401
	ErrCodeUnsupportedStrategy    ErrorCode = 402
	ErrCodeStrategyConfigError    ErrorCode = 403
	ErrCodeStrategyAlreadyDefined ErrorCode = 404

	// Backtest errors (600-699)
	ErrCodeBacktestNoBars      ErrorCode = 600
	ErrCodeBacktestInvalidLots ErrorCode = 601

	// Report errors (700-799)
	ErrCodeReportWriteFailed ErrorCode = 700

	// Aggregation errors (900-999)
	ErrCodeNoInstruments   ErrorCode = 900
	ErrCodeInstrumentPanic ErrorCode = 901
)
