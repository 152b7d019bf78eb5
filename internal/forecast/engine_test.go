package forecast

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"
)

// Mock implementations

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockOracle struct {
	series     domain.HistoricalSeries
	historyErr error
}

func (m *mockOracle) Quote(ctx context.Context, symbol string) (*domain.PricePoint, error) {
	last := m.series.Last()
	return &last, nil
}

func (m *mockOracle) History(ctx context.Context, symbol string, lookback, granularity time.Duration) (domain.HistoricalSeries, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.series, nil
}

func (m *mockOracle) Name() string { return "mock" }

type mockModel struct {
	curve  []domain.ForecastPoint
	fitErr error
}

func (m *mockModel) Fit(series domain.HistoricalSeries) (ports.TrendModel, error) {
	if m.fitErr != nil {
		return nil, m.fitErr
	}
	return &mockTrendModel{curve: m.curve}, nil
}

type mockTrendModel struct {
	curve []domain.ForecastPoint
}

func (m *mockTrendModel) Predict(horizon, step time.Duration) []domain.ForecastPoint {
	return m.curve
}

// Helpers

func observedSeries(lastPrice float64) domain.HistoricalSeries {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return domain.HistoricalSeries{
		{Symbol: "AAPL", Time: start, Price: lastPrice - 1},
		{Symbol: "AAPL", Time: start.Add(time.Hour), Price: lastPrice},
	}
}

func risingCurve(start time.Time, n int, from, stepValue float64) []domain.ForecastPoint {
	curve := make([]domain.ForecastPoint, 0, n)
	for i := 0; i < n; i++ {
		curve = append(curve, domain.ForecastPoint{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Value: from + stepValue*float64(i),
		})
	}
	return curve
}

func newTestEngine(t *testing.T, oracle ports.PriceOracle, model ports.ForecastModel) *Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{Window: 6 * time.Hour}, &mockLogger{}, oracle, model)
	require.NoError(t, err)
	return engine
}

// Tests

func TestEstimateUptrendCrossing(t *testing.T) {
	curveStart := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	// Monotonically increasing curve 100, 101, ... 149 with a target inside.
	curve := risingCurve(curveStart, 50, 100, 1)

	oracle := &mockOracle{series: observedSeries(100)}
	engine := newTestEngine(t, oracle, &mockModel{curve: curve})

	result, err := engine.Estimate(context.Background(), "AAPL", 120)
	require.NoError(t, err)

	assert.Equal(t, domain.Uptrend, result.Trend)
	assert.Equal(t, 100.0, result.CurrentPrice)
	require.True(t, result.Crossed())

	// First point with value >= 120 is index 20.
	wantETA := curveStart.Add(20 * time.Hour)
	assert.Equal(t, wantETA, *result.ETA)
	assert.Equal(t, wantETA.Add(-6*time.Hour), result.WindowStart)
	assert.Equal(t, wantETA.Add(6*time.Hour), result.WindowEnd)
}

func TestEstimateDowntrendCrossing(t *testing.T) {
	curveStart := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	// Falling curve 200, 198, ... searching for first value <= target.
	curve := risingCurve(curveStart, 50, 200, -2)

	oracle := &mockOracle{series: observedSeries(200)}
	engine := newTestEngine(t, oracle, &mockModel{curve: curve})

	result, err := engine.Estimate(context.Background(), "AAPL", 190)
	require.NoError(t, err)

	assert.Equal(t, domain.Downtrend, result.Trend)
	require.True(t, result.Crossed())
	// 200 - 2*5 = 190, first crossing at index 5.
	assert.Equal(t, curveStart.Add(5*time.Hour), *result.ETA)
}

func TestEstimateHorizonExhausted(t *testing.T) {
	curveStart := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	// Rises from 100 to 149 but the target is 500: never crossed.
	curve := risingCurve(curveStart, 50, 100, 1)

	oracle := &mockOracle{series: observedSeries(100)}
	engine := newTestEngine(t, oracle, &mockModel{curve: curve})

	result, err := engine.Estimate(context.Background(), "AAPL", 500)
	require.NoError(t, err)

	assert.Equal(t, domain.Uptrend, result.Trend)
	assert.False(t, result.Crossed())
	assert.Equal(t, 149.0, result.ExtremeValue)
	assert.Equal(t, curveStart.Add(49*time.Hour), result.HorizonEnd)
}

func TestEstimateHorizonExhaustedDowntrend(t *testing.T) {
	curveStart := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	curve := risingCurve(curveStart, 50, 200, -1) // falls to 151, target 100

	oracle := &mockOracle{series: observedSeries(200)}
	engine := newTestEngine(t, oracle, &mockModel{curve: curve})

	result, err := engine.Estimate(context.Background(), "AAPL", 100)
	require.NoError(t, err)

	assert.Equal(t, domain.Downtrend, result.Trend)
	assert.False(t, result.Crossed())
	assert.Equal(t, 151.0, result.ExtremeValue)
}

func TestEstimateHistoryFetchError(t *testing.T) {
	fetchErr := fmt.Errorf("quote service: %w", ports.ErrRateLimited)
	oracle := &mockOracle{historyErr: fetchErr}
	engine := newTestEngine(t, oracle, &mockModel{})

	_, err := engine.Estimate(context.Background(), "AAPL", 120)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrRateLimited)
}

func TestEstimateInsufficientHistory(t *testing.T) {
	fitErr := fmt.Errorf("3 usable points: %w", ports.ErrInsufficientHistory)
	oracle := &mockOracle{series: observedSeries(100)}
	engine := newTestEngine(t, oracle, &mockModel{fitErr: fitErr})

	_, err := engine.Estimate(context.Background(), "AAPL", 120)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrInsufficientHistory)
	assert.NotErrorIs(t, err, ports.ErrEstimationFailed)
}

func TestEstimateEmptyCurve(t *testing.T) {
	oracle := &mockOracle{series: observedSeries(100)}
	engine := newTestEngine(t, oracle, &mockModel{curve: nil})

	_, err := engine.Estimate(context.Background(), "AAPL", 120)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrEstimationFailed)
}
