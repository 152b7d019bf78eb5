package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"stockAlertBot/config"
	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/evaluator"
	"stockAlertBot/internal/ports"
)

// MonitorService orchestrates the alert engine: it runs the polling cycles
// that evaluate live prices against stored thresholds, fires notifications
// through the configured transport and exposes the alert-creation contract
// consumed by the HTTP layer.
//
// Two cycles run concurrently on independent timers: a fast live cycle that
// only evaluates, and a slower cycle that additionally logs an advisory
// forecast for alerts that have not fired yet. Both may observe the same
// alert in overlapping windows; the store's conditional Deactivate is the
// race boundary that keeps firing at-most-once.
type MonitorService struct {
	cfg       *config.Config
	logger    ports.Logger
	store     ports.AlertRepository
	oracle    ports.PriceOracle
	notifier  ports.Notifier
	estimator ports.ThresholdEstimator
}

// NewMonitorService creates a new application service instance.
func NewMonitorService(
	cfg *config.Config,
	logger ports.Logger,
	store ports.AlertRepository,
	oracle ports.PriceOracle,
	notifier ports.Notifier,
	estimator ports.ThresholdEstimator,
) (*MonitorService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || store == nil || oracle == nil || notifier == nil || estimator == nil {
		return nil, fmt.Errorf("missing required dependencies for MonitorService")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("configuration PollInterval must be positive")
	}
	if cfg.ForecastInterval <= 0 {
		return nil, fmt.Errorf("configuration ForecastInterval must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("configuration RequestTimeout must be positive")
	}

	return &MonitorService{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		oracle:    oracle,
		notifier:  notifier,
		estimator: estimator,
	}, nil
}

// Start runs the polling cycles until the context is cancelled or a shutdown
// signal arrives. Errors inside a cycle never terminate the service; only
// cancellation ends it.
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting monitor service...", map[string]interface{}{
		"oracle":           s.oracle.Name(),
		"pollInterval":     s.cfg.PollInterval.String(),
		"forecastInterval": s.cfg.ForecastInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// Fast live cycle: evaluation only.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunCycle(ctx, false)
			}
		}
	}()

	// Slow cycle: evaluation plus advisory forecasts for unmet thresholds.
	scheduler := cron.New()
	_, err := scheduler.AddFunc(fmt.Sprintf("@every %s", s.cfg.ForecastInterval), func() {
		s.RunCycle(ctx, true)
	})
	if err != nil {
		return fmt.Errorf("failed to register forecast cycle: %w", err)
	}
	scheduler.Start()

	<-ctx.Done()
	s.logger.Info(ctx, "Shutting down monitor service...")

	// Stop the cron scheduler and wait for any in-flight job to finish.
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.cfg.RequestTimeout):
		s.logger.Warn(ctx, "Timeout waiting for forecast cycle to finish")
	}
	wg.Wait()

	s.logger.Info(ctx, "Monitor service stopped.")
	return nil
}

// RunCycle executes one evaluation pass over all active alerts. Errors for
// one alert never abort the cycle for the remaining alerts.
func (s *MonitorService) RunCycle(ctx context.Context, withForecast bool) {
	listCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	alerts, err := s.store.ListActive(listCtx)
	cancel()
	if err != nil {
		s.logger.Error(ctx, err, "Failed to list active alerts, skipping cycle")
		return
	}
	if len(alerts) == 0 {
		s.logger.Debug(ctx, "No active alerts")
		return
	}
	s.logger.Debug(ctx, "Evaluating active alerts", map[string]interface{}{
		"count": len(alerts), "withForecast": withForecast,
	})

	for _, alert := range alerts {
		// Cancellation is checked before every alert so shutdown does not
		// wait out a long cycle.
		if ctx.Err() != nil {
			return
		}
		s.checkAlert(ctx, alert, withForecast)
	}
}

// checkAlert evaluates a single alert against a fresh quote.
func (s *MonitorService) checkAlert(ctx context.Context, alert *domain.Alert, withForecast bool) {
	quoteCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	quote, err := s.oracle.Quote(quoteCtx, alert.Symbol)
	cancel()
	if err != nil {
		// Non-fatal: skip this alert for the current cycle, retry next one.
		s.logger.Warn(ctx, "Quote fetch failed, skipping alert for this cycle", map[string]interface{}{
			"alertID": alert.ID, "symbol": alert.Symbol, "error": err.Error(),
		})
		return
	}

	s.logger.Debug(ctx, "Checking alert", map[string]interface{}{
		"alertID": alert.ID, "symbol": alert.Symbol, "kind": alert.Kind,
		"price": quote.Price, "threshold": alert.Threshold,
	})

	if evaluator.Evaluate(alert, quote.Price) {
		s.fireAlert(ctx, alert, quote.Price)
		return
	}

	if withForecast {
		s.logAdvisoryForecast(ctx, alert)
	}
}

// fireAlert notifies the recipient and deactivates the alert.
//
// Default policy: claim the alert through the store's conditional Deactivate
// first and send only when the claim wins. The CAS return value is the race
// gate, so concurrent cycles observing the same pre-deactivation state send
// exactly one notification. A delivery failure after a won claim is logged
// and accepted — the alert stays deactivated (at-most-once intent).
//
// With KeepActiveOnSendFailure the order inverts: send first and deactivate
// only after a successful delivery, so a failed send is retried next cycle at
// the cost of possible duplicates when cycles overlap.
func (s *MonitorService) fireAlert(ctx context.Context, alert *domain.Alert, price float64) {
	subject := formatFireSubject(alert)
	body := formatFireBody(alert, price)

	if s.cfg.KeepActiveOnSendFailure {
		if err := s.send(ctx, alert, subject, body); err != nil {
			s.logger.Error(ctx, err, "Notification failed, keeping alert active for retry", map[string]interface{}{
				"alertID": alert.ID, "symbol": alert.Symbol,
			})
			return
		}
		won, err := s.deactivate(ctx, alert)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to deactivate alert after notification", map[string]interface{}{
				"alertID": alert.ID,
			})
			return
		}
		if !won {
			s.logger.Warn(ctx, "Alert was already deactivated by a concurrent cycle; duplicate notification possible", map[string]interface{}{
				"alertID": alert.ID,
			})
		}
		return
	}

	won, err := s.deactivate(ctx, alert)
	if err != nil {
		// Store unreachable: the alert stays active and the next cycle
		// retries the whole evaluation.
		s.logger.Error(ctx, err, "Failed to deactivate fired alert, will retry next cycle", map[string]interface{}{
			"alertID": alert.ID, "symbol": alert.Symbol,
		})
		return
	}
	if !won {
		s.logger.Debug(ctx, "Lost deactivation race to a concurrent cycle", map[string]interface{}{
			"alertID": alert.ID,
		})
		return
	}

	s.logger.Info(ctx, "Alert fired", map[string]interface{}{
		"alertID": alert.ID, "symbol": alert.Symbol, "kind": alert.Kind,
		"price": price, "threshold": alert.Threshold,
	})

	if err := s.send(ctx, alert, subject, body); err != nil {
		// Accepted silent failure mode: the alert is already deactivated,
		// so the user is not re-notified even though delivery failed.
		s.logger.Error(ctx, err, "Notification delivery failed after deactivation; alert stays deactivated", map[string]interface{}{
			"alertID": alert.ID, "recipient": alert.Recipient,
		})
	}
}

func (s *MonitorService) deactivate(ctx context.Context, alert *domain.Alert) (bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return s.store.Deactivate(storeCtx, alert.ID)
}

func (s *MonitorService) send(ctx context.Context, alert *domain.Alert, subject, body string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return s.notifier.Send(sendCtx, alert.Recipient, subject, body)
}

// logAdvisoryForecast estimates when an unmet threshold will be crossed and
// logs the result. Advisory only: failures are logged and never affect the
// alert.
func (s *MonitorService) logAdvisoryForecast(ctx context.Context, alert *domain.Alert) {
	// Bounded by the cycle period so a slow estimate cannot pile up cycles.
	estCtx, cancel := context.WithTimeout(ctx, s.cfg.ForecastInterval)
	defer cancel()

	result, err := s.estimator.Estimate(estCtx, alert.Symbol, alert.Threshold)
	if err != nil {
		s.logger.Warn(ctx, "Advisory forecast unavailable", map[string]interface{}{
			"alertID": alert.ID, "symbol": alert.Symbol, "error": err.Error(),
		})
		return
	}
	s.logger.Info(ctx, "Advisory forecast", map[string]interface{}{
		"alertID": alert.ID, "summary": result.Summary(),
	})
}
