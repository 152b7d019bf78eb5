package ports

import (
	"context"

	"stockAlertBot/internal/domain"
)

// AlertRepository defines the interface for storing and retrieving threshold alerts.
type AlertRepository interface {
	// Create persists a new alert. The alert's ID must already be assigned.
	Create(ctx context.Context, alert *domain.Alert) error
	// ListActive retrieves all currently active alerts. The result may be
	// stale by the time the caller acts on it; no snapshot isolation is
	// guaranteed.
	ListActive(ctx context.Context) ([]*domain.Alert, error)
	// FindByID retrieves an alert by its ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id string) (*domain.Alert, error)
	// Deactivate atomically flips an alert from active to inactive and
	// reports whether this call performed the transition. It must be a
	// single conditional update ("set active=false where id=? and active"),
	// never a read-then-write: concurrent cycles racing on the same alert
	// rely on exactly one caller observing true.
	Deactivate(ctx context.Context, id string) (bool, error)
}
