package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockAlertBot/internal/domain"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.AlertKind
		threshold float64
		price     float64
		want      bool
	}{
		{name: "sell fires at threshold", kind: domain.Sell, threshold: 150.0, price: 150.0, want: true},
		{name: "sell fires above threshold", kind: domain.Sell, threshold: 150.0, price: 151.2, want: true},
		{name: "sell does not fire below threshold", kind: domain.Sell, threshold: 150.0, price: 149.99, want: false},
		{name: "buy fires at threshold", kind: domain.Buy, threshold: 90.0, price: 90.0, want: true},
		{name: "buy fires below threshold", kind: domain.Buy, threshold: 90.0, price: 85.5, want: true},
		{name: "buy does not fire above threshold", kind: domain.Buy, threshold: 90.0, price: 90.01, want: false},
		{name: "unknown kind never fires", kind: domain.AlertKind("hold"), threshold: 100.0, price: 100.0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := &domain.Alert{
				ID:        "test-alert",
				Symbol:    "AAPL",
				Threshold: tt.threshold,
				Kind:      tt.kind,
				Recipient: "a@b.com",
				Active:    true,
			}
			assert.Equal(t, tt.want, Evaluate(alert, tt.price))
		})
	}
}

func TestEvaluateNoHysteresis(t *testing.T) {
	// A single sample on the firing side is enough; the sample immediately
	// before does not matter.
	alert := &domain.Alert{Symbol: "AAPL", Threshold: 150.0, Kind: domain.Sell, Active: true}

	assert.False(t, Evaluate(alert, 145.0))
	assert.True(t, Evaluate(alert, 151.0))
}
