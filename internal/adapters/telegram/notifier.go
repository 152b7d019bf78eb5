package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stockAlertBot/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier implements the ports.Notifier interface via the Telegram Bot API.
// The recipient passed to Send is the destination chat ID.
type Notifier struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// Config holds configuration specific to the Telegram notifier adapter.
type Config struct {
	BotToken string
	Proxy    string        // optional proxy URL
	Timeout  time.Duration // per-request timeout, default 30s
	BaseURL  string        // overridable for tests
	Logger   ports.Logger
}

// New creates a new Telegram notifier adapter.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required: %w", ports.ErrConfigurationError)
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
	return &Notifier{
		botToken:   cfg.BotToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     cfg.Logger,
	}, nil
}

// Send posts a single message to the recipient chat.
func (n *Notifier) Send(ctx context.Context, recipient, subject, body string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	payload := map[string]string{
		"chat_id": recipient,
		"text":    subject + "\n\n" + body,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w: %w", ports.ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w: %w", ports.ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("telegram send: %w: %w", ports.ErrTimeout, err)
		}
		return fmt.Errorf("telegram send: %w: %w", ports.ErrNotificationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s: %w", resp.StatusCode, string(respBody), ports.ErrNotificationFailed)
	}

	n.logger.Info(ctx, "Telegram message sent", map[string]interface{}{"chatID": recipient})
	return nil
}
