package domain

import (
	"fmt"
	"time"
)

// Trend is the predicted direction of a symbol relative to a target price.
type Trend string

const (
	Uptrend   Trend = "uptrend"
	Downtrend Trend = "downtrend"
)

// ForecastPoint is a single predicted value on a forecast curve.
type ForecastPoint struct {
	Time  time.Time
	Value float64
}

// ForecastResult describes when (if ever) a symbol is predicted to reach a
// target price. When ETA is nil the target was not reached within the forecast
// horizon and ExtremeValue/HorizonEnd describe how close the curve came.
// The confidence window is a heuristic display band, not a statistical
// interval.
type ForecastResult struct {
	Symbol       string
	Trend        Trend
	CurrentPrice float64
	TargetPrice  float64
	ETA          *time.Time
	WindowStart  time.Time // ETA - window offset, zero when ETA is nil
	WindowEnd    time.Time // ETA + window offset, zero when ETA is nil
	ExtremeValue float64   // max (uptrend) or min (downtrend) of the curve when no crossing
	HorizonEnd   time.Time // last forecast timestamp
}

// Crossed reports whether the forecast found a crossing within the horizon.
func (r *ForecastResult) Crossed() bool {
	return r.ETA != nil
}

// Summary renders the result as a human-readable advisory message.
func (r *ForecastResult) Summary() string {
	if !r.Crossed() {
		return fmt.Sprintf(
			"%s: target $%.2f not reached within the forecast horizon. Current: $%.2f, trend: %s, extreme expected: $%.2f by %s",
			r.Symbol, r.TargetPrice, r.CurrentPrice, r.Trend, r.ExtremeValue,
			r.HorizonEnd.Format("2006-01-02 15:04 UTC"))
	}
	hours := time.Until(*r.ETA).Hours()
	return fmt.Sprintf(
		"%s %s: current $%.2f, target $%.2f, predicted to reach around %s (in %.1f hours), confidence window %s - %s",
		r.Symbol, r.Trend, r.CurrentPrice, r.TargetPrice,
		r.ETA.Format("2006-01-02 15:04 UTC"), hours,
		r.WindowStart.Format("2006-01-02 15:04 UTC"),
		r.WindowEnd.Format("2006-01-02 15:04 UTC"))
}
