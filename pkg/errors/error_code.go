package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Fatal at startup, never recovered.
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidPercentage    ErrorCode = 101
	ErrCodeInvalidThreshold     ErrorCode = 102
	ErrCodeInvalidCapital       ErrorCode = 103
	ErrCodeInvalidCalendar      ErrorCode = 104
	ErrCodeNoSymbols            ErrorCode = 105

	// Data gap errors (200-299). Recovered by skip/carry-forward.
	ErrCodeMissingPrice   ErrorCode = 200
	ErrCodeMissingHistory ErrorCode = 201
	ErrCodeNoDataFound    ErrorCode = 202
	ErrCodeQueryFailed    ErrorCode = 203

	// Conflicting data errors (300-399). Recovered by discarding the offender.
	ErrCodeSymbolMismatch ErrorCode = 300
	ErrCodeDateMismatch   ErrorCode = 301

	// Provider transient errors (400-499). Recovered via bounded retry.
	ErrCodeProviderRateLimited ErrorCode = 400
	ErrCodeProviderUnavailable ErrorCode = 401
	ErrCodeDownloadFailed      ErrorCode = 402

	// Ledger invariant errors (500-599). Fatal, abort the run.
	ErrCodeNegativeCash      ErrorCode = 500
	ErrCodeOversoldPosition  ErrorCode = 501
	ErrCodeOvercoveredShort  ErrorCode = 502
	ErrCodeSnapshotCorrupted ErrorCode = 503
)

// IsFatal reports whether an error code aborts a run rather than degrading
// the affected symbol/date to a safe default.
func (c ErrorCode) IsFatal() bool {
	return (c >= 100 && c < 200) || (c >= 500 && c < 600)
}
