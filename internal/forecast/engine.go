package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"
)

// Engine orchestrates the price oracle and the forecast model to answer when
// (if ever) a symbol is predicted to reach a target price. Its output is
// advisory only: the engine never deactivates alerts or sends notifications.
type Engine struct {
	cfg    EngineConfig
	logger ports.Logger
	oracle ports.PriceOracle
	model  ports.ForecastModel
}

// EngineConfig holds the windows the engine forecasts over.
type EngineConfig struct {
	Lookback    time.Duration // history span fetched for fitting, default 180 days
	Granularity time.Duration // history resolution, default 1h
	Horizon     time.Duration // forward span scanned for a crossing, default 90 days
	Step        time.Duration // forecast curve resolution, default 1h
	Window      time.Duration // confidence window half-width around the ETA, default 6h
}

func (c *EngineConfig) applyDefaults() {
	if c.Lookback <= 0 {
		c.Lookback = 180 * 24 * time.Hour
	}
	if c.Granularity <= 0 {
		c.Granularity = time.Hour
	}
	if c.Horizon <= 0 {
		c.Horizon = 90 * 24 * time.Hour
	}
	if c.Step <= 0 {
		c.Step = time.Hour
	}
	if c.Window <= 0 {
		c.Window = 6 * time.Hour
	}
}

// NewEngine creates a forecast engine.
func NewEngine(cfg EngineConfig, logger ports.Logger, oracle ports.PriceOracle, model ports.ForecastModel) (*Engine, error) {
	if logger == nil || oracle == nil || model == nil {
		return nil, fmt.Errorf("missing required dependencies for forecast engine")
	}
	cfg.applyDefaults()
	return &Engine{cfg: cfg, logger: logger, oracle: oracle, model: model}, nil
}

// Estimate fetches trailing history for the symbol, fits the model and scans
// the forecast curve for the first crossing of targetPrice.
//
// The trend direction is decided by the latest observed price: below the
// target the engine searches for the first predicted value at or above it
// (uptrend), otherwise for the first value at or below it (downtrend).
// Callers are expected to have filtered already-met conditions through the
// evaluator before asking for an estimate.
func (e *Engine) Estimate(ctx context.Context, symbol string, targetPrice float64) (*domain.ForecastResult, error) {
	series, err := e.oracle.History(ctx, symbol, e.cfg.Lookback, e.cfg.Granularity)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", symbol, err)
	}

	model, err := e.model.Fit(series)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientHistory) {
			return nil, fmt.Errorf("estimate %s: %w", symbol, err)
		}
		return nil, fmt.Errorf("estimate %s: %w: %w", symbol, ports.ErrEstimationFailed, err)
	}

	curve := model.Predict(e.cfg.Horizon, e.cfg.Step)
	if len(curve) == 0 {
		return nil, fmt.Errorf("estimate %s: empty forecast curve: %w", symbol, ports.ErrEstimationFailed)
	}

	currentPrice := series.Last().Price
	trend := domain.Downtrend
	crosses := func(v float64) bool { return v <= targetPrice }
	if currentPrice < targetPrice {
		trend = domain.Uptrend
		crosses = func(v float64) bool { return v >= targetPrice }
	}

	result := &domain.ForecastResult{
		Symbol:       symbol,
		Trend:        trend,
		CurrentPrice: currentPrice,
		TargetPrice:  targetPrice,
		HorizonEnd:   curve[len(curve)-1].Time,
	}

	// Chronological scan; the curve is ordered, so the first match is the
	// earliest timestamp.
	for _, p := range curve {
		if crosses(p.Value) {
			eta := p.Time
			result.ETA = &eta
			result.WindowStart = eta.Add(-e.cfg.Window)
			result.WindowEnd = eta.Add(e.cfg.Window)
			e.logger.Debug(ctx, "Crossing found", map[string]interface{}{
				"symbol": symbol, "target": targetPrice, "eta": eta,
			})
			return result, nil
		}
	}

	// No crossing within the horizon: report how close the curve comes.
	extreme := curve[0].Value
	for _, p := range curve[1:] {
		if trend == domain.Uptrend && p.Value > extreme {
			extreme = p.Value
		}
		if trend == domain.Downtrend && p.Value < extreme {
			extreme = p.Value
		}
	}
	result.ExtremeValue = extreme
	e.logger.Debug(ctx, "No crossing within horizon", map[string]interface{}{
		"symbol": symbol, "target": targetPrice, "extreme": extreme,
	})
	return result, nil
}
