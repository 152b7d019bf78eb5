package app

import (
	"fmt"
	"strings"
	"time"

	"stockAlertBot/internal/domain"
)

// formatFireSubject builds the notification subject for a fired alert.
func formatFireSubject(alert *domain.Alert) string {
	return fmt.Sprintf("Price Alert: %s (%s)", alert.Symbol, strings.ToUpper(string(alert.Kind)))
}

// formatFireBody builds the notification body for a fired alert.
func formatFireBody(alert *domain.Alert, price float64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s has hit your alert condition.\n\n", alert.Symbol))
	sb.WriteString(fmt.Sprintf("Type: %s\n", strings.ToUpper(string(alert.Kind))))
	sb.WriteString(fmt.Sprintf("Current price: $%.2f\n", price))
	sb.WriteString(fmt.Sprintf("Target threshold: $%.2f\n", alert.Threshold))
	sb.WriteString(fmt.Sprintf("Time: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC")))
	return sb.String()
}
