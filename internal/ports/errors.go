package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Market Data Errors (fetch failures; non-fatal, skip-and-retry-next-cycle)
	ErrRateLimited       = errors.New("market data API rate limit exceeded")
	ErrInvalidSymbol     = errors.New("unknown or unsupported symbol")
	ErrMalformedResponse = errors.New("market data response missing a usable price")
	ErrConnectionFailed  = errors.New("failed to connect to the market data provider")

	// Forecast Errors
	ErrInsufficientHistory = errors.New("not enough usable history to fit a model")
	ErrEstimationFailed    = errors.New("forecast estimation failed")

	// Notification Errors
	ErrNotificationFailed = errors.New("failed to deliver notification")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)
