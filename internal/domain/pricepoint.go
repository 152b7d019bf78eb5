package domain

import (
	"sort"
	"time"
)

// PricePoint is a single observed price for a symbol.
// High, Low and Volume are optional and zero when the source omits them.
type PricePoint struct {
	Symbol string
	Time   time.Time
	Price  float64 // last/close price
	High   float64
	Low    float64
	Volume float64
}

// HistoricalSeries is a time-ordered sequence of price points for one symbol.
type HistoricalSeries []PricePoint

// Normalize returns the series sorted chronologically, de-duplicated by
// timestamp (last observation wins) and with every timestamp converted to UTC.
// Oracles must normalize before handing a series to the forecast model.
func (s HistoricalSeries) Normalize() HistoricalSeries {
	if len(s) == 0 {
		return s
	}
	byTime := make(map[int64]PricePoint, len(s))
	for _, p := range s {
		p.Time = p.Time.UTC()
		byTime[p.Time.Unix()] = p
	}
	out := make(HistoricalSeries, 0, len(byTime))
	for _, p := range byTime {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Last returns the most recent point. The series must not be empty.
func (s HistoricalSeries) Last() PricePoint {
	return s[len(s)-1]
}
