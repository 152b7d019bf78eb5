package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"
)

// Advisory wraps the best-effort forecast returned on alert creation.
// Message is always set: either the forecast summary or a human-readable
// explanation of why no forecast is available.
type Advisory struct {
	Forecast *domain.ForecastResult // nil when forecasting failed
	Message  string
}

// CreateAlert validates and persists a new threshold alert, then produces an
// immediate advisory forecast for it. Forecast failure never fails creation:
// the advisory carries an explanation instead.
//
// This is the consumer contract for the external alert-creation layer.
func (s *MonitorService) CreateAlert(ctx context.Context, symbol string, threshold float64, kind, recipient string) (*domain.Alert, Advisory, error) {
	parsedKind, err := domain.ParseAlertKind(kind)
	if err != nil {
		return nil, Advisory{}, fmt.Errorf("create alert: %w: %w", ports.ErrInvalidRequest, err)
	}

	alert := &domain.Alert{
		ID:        uuid.NewString(),
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Threshold: threshold,
		Kind:      parsedKind,
		Recipient: strings.TrimSpace(recipient),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := alert.Validate(); err != nil {
		return nil, Advisory{}, fmt.Errorf("create alert: %w: %w", ports.ErrInvalidRequest, err)
	}

	createCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	err = s.store.Create(createCtx, alert)
	cancel()
	if err != nil {
		return nil, Advisory{}, fmt.Errorf("create alert: %w", err)
	}
	s.logger.Info(ctx, "Alert created", map[string]interface{}{
		"alertID": alert.ID, "symbol": alert.Symbol, "kind": alert.Kind, "threshold": alert.Threshold,
	})

	estCtx, cancel := context.WithTimeout(ctx, s.cfg.ForecastInterval)
	defer cancel()
	result, err := s.estimator.Estimate(estCtx, alert.Symbol, alert.Threshold)
	if err != nil {
		s.logger.Warn(ctx, "Forecast unavailable for new alert", map[string]interface{}{
			"alertID": alert.ID, "error": err.Error(),
		})
		return alert, Advisory{Message: explainForecastFailure(alert.Symbol, err)}, nil
	}

	return alert, Advisory{Forecast: result, Message: result.Summary()}, nil
}

// explainForecastFailure maps an estimation error to a message fit for the
// alert-creation response.
func explainForecastFailure(symbol string, err error) string {
	switch {
	case errors.Is(err, ports.ErrInsufficientHistory):
		return fmt.Sprintf("forecast unavailable for %s: insufficient history", symbol)
	case errors.Is(err, ports.ErrInvalidSymbol):
		return fmt.Sprintf("forecast unavailable: unknown symbol %s", symbol)
	case errors.Is(err, ports.ErrRateLimited):
		return fmt.Sprintf("forecast unavailable for %s: market data rate limited, try again later", symbol)
	case errors.Is(err, ports.ErrTimeout), errors.Is(err, ports.ErrConnectionFailed), errors.Is(err, ports.ErrMalformedResponse):
		return fmt.Sprintf("forecast unavailable for %s: symbol fetch failed", symbol)
	default:
		return fmt.Sprintf("forecast unavailable for %s", symbol)
	}
}
