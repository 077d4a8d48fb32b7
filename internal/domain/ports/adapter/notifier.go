package adapter

import "context"

// Notifier delivers a single notification. Callers treat it as fire-and-forget
// through the outbox; a delivery error marks the outbox row for retry and
// never propagates into the financial write path.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
