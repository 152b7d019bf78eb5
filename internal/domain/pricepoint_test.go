package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalSeriesNormalize(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	est := time.FixedZone("EST", -5*3600)

	series := HistoricalSeries{
		{Symbol: "AAPL", Time: base.Add(2 * time.Hour), Price: 102},
		{Symbol: "AAPL", Time: base, Price: 100},
		// Same instant as base+1h, expressed in a different zone; the later
		// entry wins the duplicate slot.
		{Symbol: "AAPL", Time: base.Add(time.Hour).In(est), Price: 101},
		{Symbol: "AAPL", Time: base.Add(time.Hour), Price: 101.5},
	}

	got := series.Normalize()
	require.Len(t, got, 3)

	assert.Equal(t, base, got[0].Time)
	assert.Equal(t, base.Add(time.Hour), got[1].Time)
	assert.Equal(t, base.Add(2*time.Hour), got[2].Time)
	assert.Equal(t, 101.5, got[1].Price)

	for _, p := range got {
		assert.Equal(t, time.UTC, p.Time.Location())
	}
}

func TestAlertValidate(t *testing.T) {
	valid := Alert{
		ID:        "id-1",
		Symbol:    "AAPL",
		Threshold: 150.0,
		Kind:      Sell,
		Recipient: "a@b.com",
		Active:    true,
	}

	tests := []struct {
		name    string
		mutate  func(*Alert)
		wantErr bool
	}{
		{name: "valid alert", mutate: func(a *Alert) {}, wantErr: false},
		{name: "empty symbol", mutate: func(a *Alert) { a.Symbol = "" }, wantErr: true},
		{name: "lowercase symbol", mutate: func(a *Alert) { a.Symbol = "aapl" }, wantErr: true},
		{name: "zero threshold", mutate: func(a *Alert) { a.Threshold = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(a *Alert) { a.Threshold = -5 }, wantErr: true},
		{name: "unknown kind", mutate: func(a *Alert) { a.Kind = "hold" }, wantErr: true},
		{name: "empty recipient", mutate: func(a *Alert) { a.Recipient = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAlertKind(t *testing.T) {
	kind, err := ParseAlertKind("BUY")
	require.NoError(t, err)
	assert.Equal(t, Buy, kind)

	kind, err = ParseAlertKind("sell")
	require.NoError(t, err)
	assert.Equal(t, Sell, kind)

	_, err = ParseAlertKind("hold")
	assert.Error(t, err)
}
