package ports

import (
	"context"
	"time"

	"stockAlertBot/internal/domain"
)

// ForecastModel fits a time-series model to a historical price series.
// The concrete technique is swappable; the engine only depends on this
// capability.
type ForecastModel interface {
	// Fit trains a model on the series. The series is cleaned first
	// (rows without a usable numeric price are dropped); too few remaining
	// points is reported as ErrInsufficientHistory, never a panic.
	Fit(series domain.HistoricalSeries) (TrendModel, error)
}

// TrendModel is a fitted model able to produce a dense future curve.
type TrendModel interface {
	// Predict returns an ordered sequence of predicted values covering
	// horizon in step-sized increments, starting one step after the last
	// observed point.
	Predict(horizon, step time.Duration) []domain.ForecastPoint
}

// ThresholdEstimator answers when (if ever) a symbol is predicted to reach a
// target price.
type ThresholdEstimator interface {
	Estimate(ctx context.Context, symbol string, targetPrice float64) (*domain.ForecastResult, error)
}
