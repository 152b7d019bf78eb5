package evaluator

import "stockAlertBot/internal/domain"

// Evaluate reports whether an alert fires at the observed price.
//
// Polarity: a Sell alert fires when the price rises to or above the threshold
// (take profit on a rise); a Buy alert fires when the price drops to or below
// the threshold (enter on a dip). A single sample on the firing side is
// enough; there is no hysteresis. Re-arming is impossible because a fired
// alert is deactivated and never listed again.
func Evaluate(alert *domain.Alert, price float64) bool {
	switch alert.Kind {
	case domain.Sell:
		return price >= alert.Threshold
	case domain.Buy:
		return price <= alert.Threshold
	default:
		return false
	}
}
