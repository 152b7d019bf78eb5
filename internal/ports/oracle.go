package ports

import (
	"context"
	"time"

	"stockAlertBot/internal/domain"
)

// PriceOracle fetches market data for a symbol from an external provider.
// Both calls are single best-effort fetches with no internal retry; the
// polling cadence of the caller is the retry mechanism.
type PriceOracle interface {
	// Quote retrieves the current price for a symbol.
	Quote(ctx context.Context, symbol string) (*domain.PricePoint, error)
	// History retrieves a trailing series covering lookback at the given
	// granularity, normalized (UTC, strictly time-ordered, de-duplicated).
	History(ctx context.Context, symbol string, lookback, granularity time.Duration) (domain.HistoricalSeries, error)
	// Name identifies the provider for logging.
	Name() string
}
