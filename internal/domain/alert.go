package domain

import (
	"fmt"
	"strings"
	"time"
)

// AlertKind is the direction of a threshold alert.
type AlertKind string

const (
	// Buy fires when the price drops to or below the threshold (enter on dip).
	Buy AlertKind = "buy"
	// Sell fires when the price rises to or above the threshold (exit on rise).
	Sell AlertKind = "sell"
)

// ParseAlertKind converts a string into an AlertKind.
func ParseAlertKind(s string) (AlertKind, error) {
	switch AlertKind(strings.ToLower(s)) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown alert kind %q", s)
	}
}

// Alert is a user-registered price threshold on a traded symbol.
// Once Active transitions to false the alert is never re-evaluated;
// a new alert must be created to watch the same threshold again.
type Alert struct {
	ID        string    // opaque identifier (UUID)
	Symbol    string    // uppercase ticker, non-empty
	Threshold float64   // positive target price
	Kind      AlertKind // buy or sell
	Recipient string    // contact address (email or chat ID)
	Active    bool
	CreatedAt time.Time
}

// Validate checks the invariants an alert must satisfy before persistence.
func (a *Alert) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("alert symbol must not be empty")
	}
	if a.Symbol != strings.ToUpper(a.Symbol) {
		return fmt.Errorf("alert symbol %q must be uppercase", a.Symbol)
	}
	if a.Threshold <= 0 {
		return fmt.Errorf("alert threshold must be positive, got %f", a.Threshold)
	}
	if a.Kind != Buy && a.Kind != Sell {
		return fmt.Errorf("unknown alert kind %q", a.Kind)
	}
	if a.Recipient == "" {
		return fmt.Errorf("alert recipient must not be empty")
	}
	return nil
}
