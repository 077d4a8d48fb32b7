// File: internal/infra/adapters/notify/noop_notifier.go
package notify

import (
	"context"
	"sync"

	"rental-payment-ledger/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier records sends in memory. Used when no email endpoint is
// configured, and in tests.
type NoopNotifier struct {
	mu   sync.Mutex
	sent []string
}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recipient)
	return nil
}

// Sent returns the recipients delivered so far.
func (n *NoopNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	copy(out, n.sent)
	return out
}
