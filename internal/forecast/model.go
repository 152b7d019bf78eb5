package forecast

import (
	"fmt"
	"math"
	"time"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"
)

const (
	defaultMinPoints   = 72  // three days of hourly data
	defaultSensitivity = 0.3 // moderate-high reaction to recent regime changes
)

// SeasonalModel fits a recency-weighted linear trend with additive daily and
// weekly seasonal components. It implements ports.ForecastModel and stands in
// for heavier seasonal-regression techniques; the engine only sees the port,
// so the technique is swappable.
type SeasonalModel struct {
	minPoints   int
	sensitivity float64
}

// ModelConfig holds tuning parameters for the seasonal model.
type ModelConfig struct {
	// MinPoints is the minimum number of usable points required to fit.
	MinPoints int
	// Sensitivity in (0, 1] controls how strongly recent observations
	// outweigh old ones when estimating the trend. Higher values track
	// regime changes faster at the cost of fitting noise.
	Sensitivity float64
}

// NewSeasonalModel creates a seasonal model with the given tuning.
func NewSeasonalModel(cfg ModelConfig) (*SeasonalModel, error) {
	minPoints := cfg.MinPoints
	if minPoints <= 0 {
		minPoints = defaultMinPoints
	}
	sensitivity := cfg.Sensitivity
	if sensitivity == 0 {
		sensitivity = defaultSensitivity
	}
	if sensitivity < 0 || sensitivity > 1 {
		return nil, fmt.Errorf("sensitivity must be in (0, 1], got %f: %w", sensitivity, ports.ErrConfigurationError)
	}
	return &SeasonalModel{minPoints: minPoints, sensitivity: sensitivity}, nil
}

// Fit trains the model on a historical series. Rows without a usable numeric
// price are dropped before fitting; fewer than MinPoints remaining is
// reported as ErrInsufficientHistory.
func (m *SeasonalModel) Fit(series domain.HistoricalSeries) (ports.TrendModel, error) {
	clean := make(domain.HistoricalSeries, 0, len(series))
	for _, p := range series {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			continue
		}
		clean = append(clean, p)
	}
	clean = clean.Normalize()

	if len(clean) < m.minPoints {
		return nil, fmt.Errorf("%d usable points, need at least %d: %w",
			len(clean), m.minPoints, ports.ErrInsufficientHistory)
	}

	start := clean[0].Time
	last := clean.Last().Time
	spanHours := last.Sub(start).Hours()

	// Recency weighting: exponential decay per hour of age, scaled so a
	// sensitivity of 1 discounts the oldest point to ~e^-6 over the span.
	decay := 0.0
	if spanHours > 0 {
		decay = 6 * m.sensitivity / spanHours
	}

	// Weighted least squares for the linear trend.
	var wSum, xBar, yBar float64
	xs := make([]float64, len(clean))
	ws := make([]float64, len(clean))
	for i, p := range clean {
		x := p.Time.Sub(start).Hours()
		w := math.Exp(-decay * (spanHours - x))
		xs[i] = x
		ws[i] = w
		wSum += w
		xBar += w * x
		yBar += w * p.Price
	}
	xBar /= wSum
	yBar /= wSum

	var num, den float64
	for i, p := range clean {
		dx := xs[i] - xBar
		num += ws[i] * dx * (p.Price - yBar)
		den += ws[i] * dx * dx
	}
	slope := 0.0
	if den > 0 {
		slope = num / den
	}
	intercept := yBar - slope*xBar

	// Seasonal components from trend residuals: hour-of-day first, then
	// day-of-week on what the daily component leaves unexplained.
	var dailySum [24]float64
	var dailyN [24]int
	var weeklyN [7]int
	residuals := make([]float64, len(clean))
	for i, p := range clean {
		residuals[i] = p.Price - (intercept + slope*xs[i])
		h := p.Time.Hour()
		dailySum[h] += residuals[i]
		dailyN[h]++
	}
	var daily [24]float64
	for h := 0; h < 24; h++ {
		if dailyN[h] > 0 {
			daily[h] = dailySum[h] / float64(dailyN[h])
		}
	}
	var weeklySums [7]float64
	for i, p := range clean {
		d := int(p.Time.Weekday())
		weeklySums[d] += residuals[i] - daily[p.Time.Hour()]
		weeklyN[d]++
	}
	var weekly [7]float64
	for d := 0; d < 7; d++ {
		if weeklyN[d] > 0 {
			weekly[d] = weeklySums[d] / float64(weeklyN[d])
		}
	}
	return &fittedModel{
		start:     start,
		origin:    last,
		intercept: intercept,
		slope:     slope,
		daily:     daily,
		weekly:    weekly,
	}, nil
}

// fittedModel is a trained seasonal model. It implements ports.TrendModel.
type fittedModel struct {
	start     time.Time // x = 0 reference
	origin    time.Time // last observed timestamp; predictions start after it
	intercept float64
	slope     float64
	daily     [24]float64
	weekly    [7]float64
}

// Predict produces a dense forecast covering horizon in step-sized
// increments, starting one step after the last observed point.
func (f *fittedModel) Predict(horizon, step time.Duration) []domain.ForecastPoint {
	if step <= 0 {
		step = time.Hour
	}
	if horizon <= 0 {
		return nil
	}
	n := int(horizon / step)
	points := make([]domain.ForecastPoint, 0, n)
	for t := f.origin.Add(step); !t.After(f.origin.Add(horizon)); t = t.Add(step) {
		x := t.Sub(f.start).Hours()
		v := f.intercept + f.slope*x + f.daily[t.UTC().Hour()] + f.weekly[int(t.UTC().Weekday())]
		points = append(points, domain.ForecastPoint{Time: t, Value: v})
	}
	return points
}
