package ports

import "context"

// Notifier delivers a message to a recipient through an external transport.
// Delivery is best-effort: the core calls Send once per firing event and does
// not expect a retry contract from the implementation.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
