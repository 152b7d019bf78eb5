package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements the ports.PriceOracle interface using the Yahoo Finance
// chart API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     ports.Logger
}

// Config holds configuration specific to the Yahoo oracle adapter.
type Config struct {
	Logger  ports.Logger
	Proxy   string        // optional proxy URL
	Timeout time.Duration // per-request timeout, default 30s
	BaseURL string        // overridable for tests
}

// New creates a new Yahoo Finance oracle adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Yahoo client")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	transport := &http.Transport{}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}, nil
}

// Name identifies the provider for logging.
func (c *Client) Name() string { return "yahoo" }

// chartResponse is the response structure of the Yahoo Finance chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (c *Client) fetchChart(ctx context.Context, symbol, interval, rng string) (domain.HistoricalSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("yahoo fetch %s: %w: %w", symbol, ports.ErrTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("yahoo fetch %s: %w: %w", symbol, ports.ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("yahoo fetch %s: %w: %w", symbol, ports.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w: %w", ports.ErrMalformedResponse, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("yahoo: status 429: %w", ports.ErrRateLimited)
	case http.StatusNotFound:
		return nil, fmt.Errorf("yahoo: symbol %s: %w", symbol, ports.ErrInvalidSymbol)
	default:
		return nil, fmt.Errorf("yahoo: status %d, body: %s: %w", resp.StatusCode, string(body), ports.ErrMalformedResponse)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w: %w", ports.ErrMalformedResponse, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo api: %s: %w", chart.Chart.Error.Description, ports.ErrInvalidSymbol)
		}
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, ports.ErrMalformedResponse)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s: %w", symbol, ports.ErrMalformedResponse)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	series := make(domain.HistoricalSeries, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		price, ok := toFloat(quote.Close[i])
		if !ok || price <= 0 {
			continue // skip null bars (holidays, pre-market gaps)
		}
		p := domain.PricePoint{
			Symbol: symbol,
			Time:   time.Unix(ts, 0).UTC(),
			Price:  price,
		}
		if i < len(quote.High) {
			p.High, _ = toFloat(quote.High[i])
		}
		if i < len(quote.Low) {
			p.Low, _ = toFloat(quote.Low[i])
		}
		if i < len(quote.Volume) {
			p.Volume, _ = toFloat(quote.Volume[i])
		}
		series = append(series, p)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo: no usable price data for %s: %w", symbol, ports.ErrMalformedResponse)
	}

	return series.Normalize(), nil
}

// Quote retrieves the latest price for a symbol from the intraday chart.
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.PricePoint, error) {
	series, err := c.fetchChart(ctx, symbol, "1m", "1d")
	if err != nil {
		return nil, err
	}
	last := series.Last()
	c.logger.Debug(ctx, "Quote fetched", map[string]interface{}{"symbol": symbol, "price": last.Price})
	return &last, nil
}

// History retrieves a trailing series covering lookback at the given granularity.
func (c *Client) History(ctx context.Context, symbol string, lookback, granularity time.Duration) (domain.HistoricalSeries, error) {
	series, err := c.fetchChart(ctx, symbol, intervalParam(granularity), rangeParam(lookback))
	if err != nil {
		return nil, err
	}
	c.logger.Debug(ctx, "History fetched", map[string]interface{}{"symbol": symbol, "points": len(series)})
	return series, nil
}

// intervalParam maps a granularity to the closest Yahoo chart interval.
func intervalParam(granularity time.Duration) string {
	switch {
	case granularity <= time.Minute:
		return "1m"
	case granularity <= 15*time.Minute:
		return "15m"
	case granularity <= time.Hour:
		return "1h"
	case granularity <= 24*time.Hour:
		return "1d"
	default:
		return "1wk"
	}
}

// rangeParam maps a lookback window to the closest Yahoo chart range.
func rangeParam(lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	switch {
	case days <= 1:
		return "1d"
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}
