package binanceoracle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// Client implements the ports.PriceOracle interface using the go-binance
// library. It only touches public market-data endpoints, so API keys are
// optional.
type Client struct {
	spotClient *binance.Client
	logger     ports.Logger
}

// Config holds configuration specific to the Binance oracle adapter.
type Config struct {
	APIKey    string
	SecretKey string
	Logger    ports.Logger
}

// New creates a new Binance oracle adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance oracle")
	}
	return &Client{
		spotClient: binance.NewClient(cfg.APIKey, cfg.SecretKey),
		logger:     cfg.Logger,
	}, nil
}

// Name identifies the provider for logging.
func (c *Client) Name() string { return "binance" }

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1121: // Invalid symbol
			mappedErr = ports.ErrInvalidSymbol
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106: // Parameter/request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "use of closed network connection") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Quote retrieves the current price for a symbol from the 24h ticker.
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.PricePoint, error) {
	op := "Quote"
	stats, err := c.spotClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	if len(stats) == 0 {
		err := fmt.Errorf("no ticker data returned for symbol %s: %w", symbol, ports.ErrMalformedResponse)
		return nil, c.handleError(ctx, err, op)
	}

	s := stats[0]
	price, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w: %w", s.LastPrice, ports.ErrMalformedResponse, err)
		return nil, c.handleError(ctx, parseErr, op)
	}
	point := &domain.PricePoint{
		Symbol: symbol,
		Time:   time.Now().UTC(),
		Price:  price,
	}
	// High/low/volume are optional on a PricePoint; ignore parse failures.
	point.High, _ = strconv.ParseFloat(s.HighPrice, 64)
	point.Low, _ = strconv.ParseFloat(s.LowPrice, 64)
	point.Volume, _ = strconv.ParseFloat(s.Volume, 64)
	return point, nil
}

// History fetches all klines covering lookback at the given granularity,
// paging through the API limit.
func (c *Client) History(ctx context.Context, symbol string, lookback, granularity time.Duration) (domain.HistoricalSeries, error) {
	op := "History"
	const maxLimit = 1000
	interval := intervalParam(granularity)
	end := time.Now().UTC()
	from := end.Add(-lookback)

	var series domain.HistoricalSeries
	for {
		klines, err := c.spotClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		for _, k := range klines {
			p, err := translateKline(k, symbol)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate kline: %w: %w", ports.ErrMalformedResponse, err), op)
			}
			series = append(series, p)
		}
		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime)
		if from.After(end) || len(klines) < maxLimit {
			break
		}
	}
	if len(series) == 0 {
		err := fmt.Errorf("no kline data returned for symbol %s: %w", symbol, ports.ErrMalformedResponse)
		return nil, c.handleError(ctx, err, op)
	}

	c.logger.Debug(ctx, "History fetched", map[string]interface{}{"symbol": symbol, "points": len(series)})
	return series.Normalize(), nil
}

// translateKline converts a binance kline into a domain price point keyed on
// the close time.
func translateKline(k *binance.Kline, symbol string) (domain.PricePoint, error) {
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parse close '%s': %w", k.Close, err)
	}
	p := domain.PricePoint{
		Symbol: symbol,
		Time:   time.UnixMilli(k.CloseTime).UTC(),
		Price:  closePrice,
	}
	p.High, _ = strconv.ParseFloat(k.High, 64)
	p.Low, _ = strconv.ParseFloat(k.Low, 64)
	p.Volume, _ = strconv.ParseFloat(k.Volume, 64)
	return p, nil
}

// intervalParam maps a granularity to the closest Binance kline interval.
func intervalParam(granularity time.Duration) string {
	switch {
	case granularity <= time.Minute:
		return "1m"
	case granularity <= 15*time.Minute:
		return "15m"
	case granularity <= time.Hour:
		return "1h"
	case granularity <= 4*time.Hour:
		return "4h"
	default:
		return "1d"
	}
}
